package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	cmtlog "github.com/cometbft/cometbft/libs/log"
	"github.com/gin-gonic/gin"
)

// Service serves the indexed governance data over HTTP.
type Service struct {
	engine     *gin.Engine
	indexer    *ChainIndexer
	listenAddr string
	logger     cmtlog.Logger
}

func NewService(listenAddr string, indexer *ChainIndexer, logger cmtlog.Logger) *Service {
	r := gin.New()
	r.Use(gin.Recovery())
	s := &Service{
		engine:     r,
		indexer:    indexer,
		listenAddr: listenAddr,
		logger:     logger.With("module", "indexer-service"),
	}
	s.engine.POST("/getInstances", s.handleGetInstances)
	s.engine.POST("/getVotes", s.handleGetVotes)
	s.engine.POST("/getCredentials", s.handleGetCredentials)
	return s
}

func (s *Service) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.listenAddr,
		Handler: s.engine,
	}
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown fail", "err", err)
		}
	}()
	s.logger.Info("indexer service listening", "addr", s.listenAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	// ListenAndServe returns as soon as Shutdown starts; wait for in-flight
	// requests before the caller releases the index.
	<-drained
	return nil
}

type InstanceInfo struct {
	Instance Instance `json:"instance"`
	Admins   []string `json:"admins"`
}

type GetInstancesReq struct {
	Address  string `json:"address"`
	Creator  string `json:"creator"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetInstancesResponse struct {
	Instances []InstanceInfo `json:"instances"`
	Total     uint64         `json:"total"`
}

func (s *Service) handleGetInstances(c *gin.Context) {
	var response GetInstancesResponse
	response.Instances = make([]InstanceInfo, 0)
	var requestData GetInstancesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var instances []Instance
	if requestData.Address != "" {
		instance, err := s.indexer.getInstance(requestData.Address)
		if err != nil {
			if isNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		instances = []Instance{*instance}
		response.Total = 1
	} else {
		var err error
		instances, response.Total, err = s.indexer.getInstances(requestData.Creator, requestData.Page, requestData.PageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	for _, instance := range instances {
		admins, err := s.indexer.getAdmins(instance.Address)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Instances = append(response.Instances, InstanceInfo{Instance: instance, Admins: admins})
	}
	c.JSON(http.StatusOK, response)
}

type VoteInfo struct {
	Address       string   `json:"address"`
	Unit          string   `json:"unit"`
	Index         uint64   `json:"index"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	RequiredTypes []uint64 `json:"requiredTypes"`
	VotingEnd     uint64   `json:"votingEnd"`
	Tallies       []uint64 `json:"tallies"`
	Total         uint64   `json:"total"`
	Height        uint64   `json:"height"`
}

type GetVotesReq struct {
	Vote     string `json:"vote"`
	Unit     string `json:"unit"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetVotesResponse struct {
	Votes []VoteInfo `json:"votes"`
	Total uint64     `json:"total"`
}

func (s *Service) voteInfo(vote *Vote) (info VoteInfo, err error) {
	info = VoteInfo{
		Address:       vote.Address,
		Unit:          vote.Unit,
		Index:         vote.VoteIndex,
		Prompt:        vote.Prompt,
		RequiredTypes: []uint64{},
		VotingEnd:     vote.VotingEnd,
		Height:        vote.Height,
	}
	if vote.RequiredTypes != "" {
		if err = json.Unmarshal([]byte(vote.RequiredTypes), &info.RequiredTypes); err != nil {
			return
		}
	}
	info.Options, info.Tallies, info.Total, err = s.indexer.getTallies(vote)
	return
}

func (s *Service) handleGetVotes(c *gin.Context) {
	var response GetVotesResponse
	response.Votes = make([]VoteInfo, 0)
	var requestData GetVotesReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var votes []Vote
	switch {
	case requestData.Vote != "":
		vote, err := s.indexer.getVote(requestData.Vote)
		if err != nil {
			if isNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		votes = []Vote{*vote}
		response.Total = 1
	case requestData.Unit != "":
		var err error
		votes, response.Total, err = s.indexer.getVotesByUnit(requestData.Unit, requestData.Page, requestData.PageSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "vote or unit is required"})
		return
	}
	for i := range votes {
		info, err := s.voteInfo(&votes[i])
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Votes = append(response.Votes, info)
	}
	c.JSON(http.StatusOK, response)
}

type GetCredentialsReq struct {
	Issuer   string `json:"issuer"`
	Holder   string `json:"holder"`
	Page     int    `json:"page"`
	PageSize int    `json:"pageSize"`
}

type GetCredentialsResponse struct {
	Types       []CredentialType `json:"types"`
	Credentials []Credential     `json:"credentials"`
	Total       uint64           `json:"total"`
}

func (s *Service) handleGetCredentials(c *gin.Context) {
	var response GetCredentialsResponse
	response.Types = make([]CredentialType, 0)
	response.Credentials = make([]Credential, 0)
	var requestData GetCredentialsReq
	if err := c.ShouldBindJSON(&requestData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if requestData.Issuer == "" && requestData.Holder == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "issuer or holder is required"})
		return
	}
	if requestData.Issuer != "" {
		cts, err := s.indexer.getCredentialTypes(requestData.Issuer)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		response.Types = append(response.Types, cts...)
	}
	credentials, total, err := s.indexer.getCredentials(requestData.Issuer, requestData.Holder, requestData.Page, requestData.PageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	response.Credentials = append(response.Credentials, credentials...)
	response.Total = total
	c.JSON(http.StatusOK, response)
}
