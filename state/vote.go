package state

import (
	"fmt"
	"math"

	"github.com/Emmo00/agora/types"
	"github.com/ethereum/go-ethereum/common"
)

func (s *State) newVote(addr common.Address) error {
	return s.putVote(&types.Vote{Address: addr})
}

// getVote returns the vote stored at addr. A handle with no record reads as
// an uninitialized vote.
func (s *State) getVote(addr common.Address) (v *types.Vote, err error) {
	v = &types.Vote{Address: addr}
	_, err = s.getRecord(fmt.Sprintf(KeyVote, addr), v)
	if err != nil {
		return nil, err
	}
	return
}

func (s *State) requireVote(addr common.Address) (*types.Vote, error) {
	v, err := s.getVote(addr)
	if err != nil {
		return nil, err
	}
	if !v.Initialized {
		return nil, ErrNotInitialized
	}
	return v, nil
}

func (s *State) putVote(v *types.Vote) error {
	return s.putRecord(fmt.Sprintf(KeyVote, v.Address), v)
}

// InitializeVote opens the ballot at addr. Voting ends duration seconds after
// the current block time.
func (s *State) InitializeVote(addr, unit, issuer common.Address, prompt string, options []string, duration uint64, requiredTypes []uint64) error {
	return s.atomic(func() error {
		v, err := s.getVote(addr)
		if err != nil {
			return err
		}
		if v.Initialized {
			return ErrAlreadyInitialized
		}
		if prompt == "" {
			return ErrEmptyPrompt
		}
		if len(options) < types.MinVoteOptions {
			return ErrNotEnoughOptions
		}
		if len(options) > types.MaxVoteOptions {
			return ErrTooManyOptions
		}
		for _, opt := range options {
			if opt == "" {
				return ErrEmptyOption
			}
		}
		if duration == 0 {
			return ErrInvalidVotingPeriod
		}
		now := s.Now()
		end := now + duration
		if end < now {
			end = math.MaxUint64
		}

		u, err := s.getUnit(unit)
		if err != nil {
			return err
		}
		v.Initialized = true
		v.Unit = unit
		v.Issuer = issuer
		v.Index = u.VoteCount
		v.Prompt = prompt
		v.Options = append([]string(nil), options...)
		v.Tallies = make([]uint64, len(options))
		v.VotingEnd = end
		v.RequiredTypes = dedupTypes(requiredTypes)
		return s.putVote(v)
	})
}

// dedupTypes drops repeated ids keeping first occurrence order.
func dedupTypes(ids []uint64) []uint64 {
	res := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}

// CastVote records voter's ballot for option and updates the tally.
func (s *State) CastVote(addr, voter common.Address, option uint64) (event *types.EventVoteCast, err error) {
	s.logger.Debug("apply cast vote", "vote", addr, "voter", voter, "option", option, "height", s.header.Height)
	exit, err := s.enter(addr)
	if err != nil {
		return nil, err
	}
	defer exit()
	err = s.atomic(func() error {
		v, err := s.requireVote(addr)
		if err != nil {
			return err
		}
		if !v.Active(s.Now()) {
			return ErrVotingEnded
		}
		b, err := s.Ballot(addr, voter)
		if err != nil {
			return err
		}
		if b.Voted {
			return ErrAlreadyVoted
		}
		if option >= uint64(len(v.Options)) {
			return ErrInvalidOption
		}
		if v.Gated() {
			ok, err := s.HoldsAnyPassport(v.Issuer, voter, v.RequiredTypes)
			if err != nil {
				return err
			}
			if !ok {
				return ErrMissingRequiredPassport
			}
		}
		b = &types.Ballot{Voted: true, Option: option}
		if err = s.putRecord(fmt.Sprintf(KeyBallot, addr, voter), b); err != nil {
			return err
		}
		v.Tallies[option] += 1
		v.Total += 1
		if err = s.putVote(v); err != nil {
			return err
		}
		event = &types.EventVoteCast{Vote: addr, Voter: voter, Option: option}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return
}

func (s *State) Vote(addr common.Address) (*types.Vote, error) {
	return s.requireVote(addr)
}

func (s *State) Ballot(addr, voter common.Address) (b *types.Ballot, err error) {
	b = new(types.Ballot)
	_, err = s.getRecord(fmt.Sprintf(KeyBallot, addr, voter), b)
	if err != nil {
		return nil, err
	}
	return
}

func (s *State) Options(addr common.Address) ([]string, error) {
	v, err := s.getVote(addr)
	if err != nil {
		return nil, err
	}
	return v.Options, nil
}

func (s *State) RequiredTypes(addr common.Address) ([]uint64, error) {
	v, err := s.getVote(addr)
	if err != nil {
		return nil, err
	}
	return v.RequiredTypes, nil
}

func (s *State) Results(addr common.Address) (*types.VoteResults, error) {
	v, err := s.getVote(addr)
	if err != nil {
		return nil, err
	}
	return &types.VoteResults{
		Options: v.Options,
		Tallies: v.Tallies,
		Total:   v.Total,
	}, nil
}

// Winner returns the option with the highest tally once voting has ended.
// Ties go to the lowest index; with no ballots option 0 wins with 0 votes.
func (s *State) Winner(addr common.Address) (*types.VoteWinner, error) {
	v, err := s.requireVote(addr)
	if err != nil {
		return nil, err
	}
	if v.Active(s.Now()) {
		return nil, ErrVotingNotEnded
	}
	w := &types.VoteWinner{}
	for i, n := range v.Tallies {
		if n > w.Votes {
			w.Index = uint64(i)
			w.Votes = n
		}
	}
	if len(v.Options) > 0 {
		w.Option = v.Options[w.Index]
	}
	return w, nil
}

func (s *State) IsActive(addr common.Address) (bool, error) {
	v, err := s.getVote(addr)
	if err != nil {
		return false, err
	}
	return v.Active(s.Now()), nil
}

// CanVote reports whether voter would be accepted by CastVote for some option.
func (s *State) CanVote(addr, voter common.Address) (bool, error) {
	v, err := s.getVote(addr)
	if err != nil {
		return false, err
	}
	if !v.Active(s.Now()) {
		return false, nil
	}
	b, err := s.Ballot(addr, voter)
	if err != nil {
		return false, err
	}
	if b.Voted {
		return false, nil
	}
	if !v.Gated() {
		return true, nil
	}
	return s.HoldsAnyPassport(v.Issuer, voter, v.RequiredTypes)
}

func (s *State) TimeRemaining(addr common.Address) (uint64, error) {
	v, err := s.getVote(addr)
	if err != nil {
		return 0, err
	}
	now := s.Now()
	if !v.Active(now) {
		return 0, nil
	}
	return v.VotingEnd - now, nil
}

func (s *State) IsGated(addr common.Address) (bool, error) {
	v, err := s.getVote(addr)
	if err != nil {
		return false, err
	}
	return v.Gated(), nil
}
