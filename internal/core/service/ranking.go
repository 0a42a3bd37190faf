package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/mechshop/service-api/internal/core/domain"
	"github.com/mechshop/service-api/internal/core/ports"
)

// RankingAggregator orders mechanics by the number of tickets they work on.
type RankingAggregator struct {
	mechanics   ports.MechanicRepository
	memberships ports.MembershipRepository
	cache       ports.RankingCache
	log         zerolog.Logger
}

// NewRankingAggregator builds an aggregator. cache may be nil.
func NewRankingAggregator(mechanics ports.MechanicRepository, memberships ports.MembershipRepository, cache ports.RankingCache, log zerolog.Logger) *RankingAggregator {
	return &RankingAggregator{mechanics: mechanics, memberships: memberships, cache: cache, log: log}
}

// RankMechanics returns every mechanic sorted by ticket count descending,
// ties broken by ascending id.
func (r *RankingAggregator) RankMechanics(ctx context.Context) ([]domain.MechanicRank, error) {
	if r.cache != nil {
		ranks, ok, err := r.cache.Get(ctx)
		if err != nil {
			r.log.Warn().Err(err).Msg("ranking cache read failed")
		} else if ok {
			return ranks, nil
		}
	}

	mechanics, err := r.mechanics.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("rank mechanics: %w", err)
	}
	counts, err := r.memberships.CountTicketsByMechanic(ctx)
	if err != nil {
		return nil, fmt.Errorf("rank mechanics: %w", err)
	}

	ranks := Rank(mechanics, counts)

	if r.cache != nil {
		if err := r.cache.Set(ctx, ranks); err != nil {
			r.log.Warn().Err(err).Msg("ranking cache write failed")
		}
	}
	return ranks, nil
}

// Rank builds the leaderboard from mechanics and their ticket counts.
func Rank(mechanics []*domain.Mechanic, counts map[int64]int) []domain.MechanicRank {
	ranks := make([]domain.MechanicRank, 0, len(mechanics))
	for _, m := range mechanics {
		ranks = append(ranks, domain.MechanicRank{
			ID:          m.ID,
			Name:        m.Name,
			Email:       m.Email,
			Phone:       m.Phone,
			Salary:      m.Salary,
			TicketCount: counts[m.ID],
		})
	}
	slices.SortFunc(ranks, func(a, b domain.MechanicRank) int {
		if c := cmp.Compare(b.TicketCount, a.TicketCount); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return ranks
}
