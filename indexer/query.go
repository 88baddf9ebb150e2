package indexer

import (
	"encoding/json"
	"errors"

	"github.com/jinzhu/gorm"
)

const maxPageSize = 100

func pageBounds(page, pageSize int) (offset, limit int) {
	if page < 0 {
		page = 0
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page * pageSize, pageSize
}

func (c *ChainIndexer) getInstance(address string) (*Instance, error) {
	var instance Instance
	err := c.db.Where("address = ?", address).First(&instance).Error
	if err != nil {
		return nil, err
	}
	return &instance, nil
}

// getInstances lists instances newest first, optionally by creator.
func (c *ChainIndexer) getInstances(creator string, page, pageSize int) ([]Instance, uint64, error) {
	offset, limit := pageBounds(page, pageSize)
	q := c.db.Model(&Instance{})
	if creator != "" {
		q = q.Where("creator = ?", creator)
	}
	var total uint64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var instances []Instance
	err := q.Order("instance_index desc").Offset(offset).Limit(limit).Find(&instances).Error
	if err != nil {
		return nil, 0, err
	}
	return instances, total, nil
}

func (c *ChainIndexer) getAdmins(unit string) ([]string, error) {
	var admins []Admin
	err := c.db.Where("unit = ?", unit).Order("id asc").Find(&admins).Error
	if err != nil {
		return nil, err
	}
	res := make([]string, 0, len(admins))
	for _, a := range admins {
		res = append(res, a.Address)
	}
	return res, nil
}

func (c *ChainIndexer) getVote(address string) (*Vote, error) {
	var vote Vote
	err := c.db.Where("address = ?", address).First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (c *ChainIndexer) getVotesByUnit(unit string, page, pageSize int) ([]Vote, uint64, error) {
	offset, limit := pageBounds(page, pageSize)
	q := c.db.Model(&Vote{}).Where("unit = ?", unit)
	var total uint64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var votes []Vote
	err := q.Order("vote_index desc").Offset(offset).Limit(limit).Find(&votes).Error
	if err != nil {
		return nil, 0, err
	}
	return votes, total, nil
}

// getTallies counts the stored ballots of vote per option.
func (c *ChainIndexer) getTallies(vote *Vote) (options []string, tallies []uint64, total uint64, err error) {
	if err = json.Unmarshal([]byte(vote.Options), &options); err != nil {
		return
	}
	tallies = make([]uint64, len(options))
	var ballots []Ballot
	if err = c.db.Where("vote = ?", vote.Address).Find(&ballots).Error; err != nil {
		return
	}
	for _, b := range ballots {
		if b.Option < uint64(len(tallies)) {
			tallies[b.Option]++
			total++
		}
	}
	return
}

func (c *ChainIndexer) getCredentialTypes(issuer string) ([]CredentialType, error) {
	var cts []CredentialType
	err := c.db.Where("issuer = ?", issuer).Order("type_id asc").Find(&cts).Error
	if err != nil {
		return nil, err
	}
	return cts, nil
}

func (c *ChainIndexer) getCredentials(issuer, holder string, page, pageSize int) ([]Credential, uint64, error) {
	offset, limit := pageBounds(page, pageSize)
	q := c.db.Model(&Credential{})
	if issuer != "" {
		q = q.Where("issuer = ?", issuer)
	}
	if holder != "" {
		q = q.Where("holder = ?", holder)
	}
	var total uint64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var credentials []Credential
	err := q.Order("id desc").Offset(offset).Limit(limit).Find(&credentials).Error
	if err != nil {
		return nil, 0, err
	}
	return credentials, total, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
