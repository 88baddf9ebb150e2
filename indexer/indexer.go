package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Emmo00/agora/types"
	abci "github.com/cometbft/cometbft/abci/types"
	cmtlog "github.com/cometbft/cometbft/libs/log"
	comethttp "github.com/cometbft/cometbft/rpc/client/http"
	coretypes "github.com/cometbft/cometbft/rpc/core/types"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

// blockClient is the part of the CometBFT RPC client the indexer reads.
type blockClient interface {
	Status(ctx context.Context) (*coretypes.ResultStatus, error)
	BlockResults(ctx context.Context, height *int64) (*coretypes.ResultBlockResults, error)
}

// ChainIndexer follows committed blocks and stores the governance events of
// every successful tx in sqlite.
type ChainIndexer struct {
	logger        cmtlog.Logger
	Url           string
	Height        int64
	db            *gorm.DB
	cli           blockClient
	eventHandlers map[string]eventHandler
}

func OpenDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Height{}, &Instance{}, &Admin{}, &CredentialType{}, &Allowlist{}, &Credential{}, &Vote{}, &Ballot{}).Error; err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewChainIndexer(logger cmtlog.Logger, dbPath string, chainUrl string) (*ChainIndexer, error) {
	logger.Info("NewChainIndexer", "dbPath", dbPath, "url", chainUrl)
	cli, err := comethttp.New(chainUrl, "/websocket")
	if err != nil {
		return nil, err
	}
	db, err := OpenDB(dbPath)
	if err != nil {
		return nil, err
	}
	c, err := newChainIndexer(logger, db, cli)
	if err != nil {
		db.Close()
		return nil, err
	}
	c.Url = chainUrl
	return c, nil
}

func newChainIndexer(logger cmtlog.Logger, db *gorm.DB, cli blockClient) (*ChainIndexer, error) {
	h := Height{Id: 1}
	if err := db.First(&h).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	c := &ChainIndexer{
		logger: logger.With("module", "indexer"),
		Height: int64(h.Height + 1),
		db:     db,
		cli:    cli,
	}
	c.eventHandlers = map[string]eventHandler{
		types.EventInstanceCreatedType:       c.handleEventInstanceCreated,
		types.EventAdminAddedType:            c.handleEventAdmin,
		types.EventAdminRemovedType:          c.handleEventAdmin,
		types.EventMetadataUpdatedType:       c.handleEventMetadataUpdated,
		types.EventCredentialTypeCreatedType: c.handleEventCredentialTypeCreated,
		types.EventAllowlistUpdatedType:      c.handleEventAllowlistUpdated,
		types.EventCredentialMintedType:      c.handleEventCredentialMinted,
		types.EventVoteCreatedType:           c.handleEventVoteCreated,
		types.EventVoteCastType:              c.handleEventVoteCast,
	}
	return c, nil
}

func (c *ChainIndexer) Close() error {
	return c.db.Close()
}

type eventHandler func(ctx context.Context, db *gorm.DB, event abci.Event, height int64)

func (c *ChainIndexer) handleEvent(ctx context.Context, db *gorm.DB, event abci.Event, height int64) {
	if h, ok := c.eventHandlers[event.Type]; ok {
		h(ctx, db, event, height)
	}
}

func (c *ChainIndexer) handleEventInstanceCreated(ctx context.Context, db *gorm.DB, event abci.Event, height int64) {
	ev := types.DecodeEventInstanceCreated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	instance := Instance{
		Address:        ev.Instance.Hex(),
		InstanceIndex:  ev.Index,
		Creator:        ev.Creator.Hex(),
		Metadata:       ev.Metadata,
		Height:         uint64(height),
		MetadataHeight: uint64(height),
	}
	if err := db.Save(&instance).Error; err != nil {
		c.logger.Error("save instance fail", "err", err)
	}
	admin := Admin{
		Unit:    instance.Address,
		Address: instance.Creator,
		Height:  uint64(height),
	}
	if err := db.Create(&admin).Error; err != nil {
		c.logger.Error("save admin fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventAdmin(ctx context.Context, db *gorm.DB, event abci.Event, height int64) {
	ev := types.DecodeEventAdmin(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	unit, addr := ev.Unit.Hex(), ev.Admin.Hex()
	if !ev.Added {
		if err := db.Where("unit = ? AND address = ?", unit, addr).Delete(&Admin{}).Error; err != nil {
			c.logger.Error("delete admin fail", "err", err)
		}
		return
	}
	admin := Admin{Unit: unit, Address: addr, Height: uint64(height)}
	if err := db.Create(&admin).Error; err != nil {
		c.logger.Error("save admin fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventMetadataUpdated(ctx context.Context, db *gorm.DB, event abci.Event, height int64) {
	ev := types.DecodeEventMetadataUpdated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	err := db.Model(&Instance{}).Where("address = ?", ev.Unit.Hex()).Updates(map[string]interface{}{
		"metadata":        ev.NewMetadata,
		"metadata_height": uint64(height),
	}).Error
	if err != nil {
		c.logger.Error("update instance fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventCredentialTypeCreated(ctx context.Context, db *gorm.DB, event abci.Event, height int64) {
	ev := types.DecodeEventCredentialTypeCreated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	ct := CredentialType{
		Issuer:   ev.Issuer.Hex(),
		TypeId:   ev.TypeID,
		Name:     ev.Name,
		Metadata: ev.Metadata,
		IsOpen:   ev.IsOpen,
		Height:   uint64(height),
	}
	if err := db.Create(&ct).Error; err != nil {
		c.logger.Error("save credential type fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventAllowlistUpdated(ctx context.Context, db *gorm.DB, event abci.Event, height int64) {
	ev := types.DecodeEventAllowlistUpdated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	for _, addr := range ev.Addresses {
		entry := Allowlist{
			Issuer:  ev.Issuer.Hex(),
			TypeId:  ev.TypeID,
			Address: addr.Hex(),
		}
		err := db.Where(entry).Attrs(Allowlist{Height: uint64(height)}).FirstOrCreate(&entry).Error
		if err != nil {
			c.logger.Error("save allowlist fail", "err", err)
		}
	}
}

func (c *ChainIndexer) handleEventCredentialMinted(ctx context.Context, db *gorm.DB, event abci.Event, height int64) {
	ev := types.DecodeEventCredentialMinted(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	credential := Credential{
		Issuer:   ev.Issuer.Hex(),
		TypeId:   ev.TypeID,
		Holder:   ev.Holder.Hex(),
		Operator: ev.Operator.Hex(),
		Height:   uint64(height),
	}
	if err := db.Create(&credential).Error; err != nil {
		c.logger.Error("save credential fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventVoteCreated(ctx context.Context, db *gorm.DB, event abci.Event, height int64) {
	ev := types.DecodeEventVoteCreated(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	options, _ := json.Marshal(ev.Options)
	required, _ := json.Marshal(ev.RequiredTypes)
	vote := Vote{
		Address:       ev.Vote.Hex(),
		Unit:          ev.Unit.Hex(),
		VoteIndex:     ev.Index,
		Prompt:        ev.Prompt,
		Options:       string(options),
		VotingEnd:     ev.VotingEnd,
		RequiredTypes: string(required),
		Height:        uint64(height),
	}
	if err := db.Save(&vote).Error; err != nil {
		c.logger.Error("save vote fail", "err", err)
	}
}

func (c *ChainIndexer) handleEventVoteCast(ctx context.Context, db *gorm.DB, event abci.Event, height int64) {
	ev := types.DecodeEventVoteCast(event)
	if ev == nil {
		c.logger.Error("decode event fail", "event", event)
		return
	}
	ballot := Ballot{
		Vote:   ev.Vote.Hex(),
		Voter:  ev.Voter.Hex(),
		Option: ev.Option,
		Height: uint64(height),
	}
	if err := db.Create(&ballot).Error; err != nil {
		c.logger.Error("save ballot fail", "err", err)
	}
}

// indexBlock stores the events of the successful txs at height.
func (c *ChainIndexer) indexBlock(ctx context.Context, height int64) error {
	res, err := c.cli.BlockResults(ctx, &height)
	if err != nil {
		return err
	}
	tx := c.db.Begin()
	for _, r := range res.TxsResults {
		if r.Code != 0 {
			continue
		}
		for _, event := range r.Events {
			c.handleEvent(ctx, tx, event, height)
		}
	}
	if err := tx.Save(&Height{Id: 1, Height: uint64(height)}).Error; err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

func (c *ChainIndexer) reconnect() {
	if c.Url == "" {
		return
	}
	cli, err := comethttp.New(c.Url, "/websocket")
	if err != nil {
		c.logger.Error("reconnect fail", "err", err)
		return
	}
	c.cli = cli
}

// Sync indexes every block up to the latest committed height.
func (c *ChainIndexer) Sync(ctx context.Context) error {
	b, err := c.cli.Status(ctx)
	if err != nil {
		return err
	}
	for b.SyncInfo.LatestBlockHeight >= c.Height {
		if err = ctx.Err(); err != nil {
			return err
		}
		c.logger.Debug("indexer syncing", "height", c.Height)
		if err = c.indexBlock(ctx, c.Height); err != nil {
			return err
		}
		c.Height++
	}
	return nil
}

func (c *ChainIndexer) Start(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Sync(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				c.logger.Error("sync fail", "height", c.Height, "err", err)
				c.reconnect()
			}
		}
	}
}
