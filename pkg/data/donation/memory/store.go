package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/woofi-pets/donation-server/pkg/data/donation"
	"github.com/woofi-pets/donation-server/pkg/database/query"
)

type store struct {
	mu      sync.Mutex
	records []*donation.Record
	last    uint64
}

// New returns a new in memory donation.Store
func New() donation.Store {
	return &store{}
}

// Save implements donation.Store.Save
func (s *store) Save(_ context.Context, data *donation.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findBySubject(data.SubjectID)
	if item != nil {
		if data.DonationCount < item.DonationCount {
			return nil
		}

		item.LastDonor = data.LastDonor
		item.CumulativeAmount = data.CumulativeAmount
		item.DonationCount = data.DonationCount
		item.Mint = data.Mint
		item.LastUpdatedAt = time.Now()

		item.CopyTo(data)
	} else {
		s.last++

		cloned := data.Clone()
		cloned.Id = s.last
		cloned.LastUpdatedAt = time.Now()
		cloned.CreatedAt = time.Now()
		s.records = append(s.records, &cloned)

		cloned.CopyTo(data)
	}

	return nil
}

// Get implements donation.Store.Get
func (s *store) Get(_ context.Context, subjectID string) (*donation.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findBySubject(subjectID)
	if item == nil {
		return nil, donation.ErrRecordNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// GetTopBySubject implements donation.Store.GetTopBySubject
func (s *store) GetTopBySubject(_ context.Context, limit uint64) ([]*donation.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := make([]*donation.Record, len(s.records))
	copy(sorted, s.records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CumulativeAmount > sorted[j].CumulativeAmount
	})

	if uint64(len(sorted)) > limit {
		sorted = sorted[:limit]
	}

	res := make([]*donation.Record, len(sorted))
	for i, item := range sorted {
		cloned := item.Clone()
		res[i] = &cloned
	}
	return res, nil
}

// GetAllByLastUpdated implements donation.Store.GetAllByLastUpdated
func (s *store) GetAllByLastUpdated(_ context.Context, ordering query.Ordering, limit uint64) ([]*donation.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sorted := make([]*donation.Record, len(s.records))
	copy(sorted, s.records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if ordering == query.Descending {
			return sorted[i].LastUpdatedAt.After(sorted[j].LastUpdatedAt)
		}
		return sorted[i].LastUpdatedAt.Before(sorted[j].LastUpdatedAt)
	})

	if uint64(len(sorted)) > limit {
		sorted = sorted[:limit]
	}

	res := make([]*donation.Record, len(sorted))
	for i, item := range sorted {
		cloned := item.Clone()
		res[i] = &cloned
	}
	return res, nil
}

// GetAllByMint implements donation.Store.GetAllByMint
func (s *store) GetAllByMint(_ context.Context, mint string, opts ...query.Option) ([]*donation.Record, error) {
	req, err := query.DefaultPaginationHandler(opts...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.filter(s.findByMint(mint), req.Cursor, req.Limit, req.SortBy)
	if len(res) == 0 {
		return nil, donation.ErrRecordNotFound
	}
	return res, nil
}

func (s *store) findByMint(mint string) []*donation.Record {
	var res []*donation.Record
	for _, item := range s.records {
		if item.Mint == mint {
			res = append(res, item)
		}
	}
	return res
}

func (s *store) filter(items []*donation.Record, cursor query.Cursor, limit uint64, direction query.Ordering) []*donation.Record {
	var start uint64
	if direction == query.Descending {
		start = s.last + 1
	}
	if len(cursor) > 0 {
		start = cursor.ToUint64()
	}

	var res []*donation.Record
	for _, item := range items {
		if direction == query.Ascending && item.Id > start {
			cloned := item.Clone()
			res = append(res, &cloned)
		}
		if direction == query.Descending && item.Id < start {
			cloned := item.Clone()
			res = append(res, &cloned)
		}
	}

	if direction == query.Descending {
		sort.Slice(res, func(i, j int) bool {
			return res[i].Id > res[j].Id
		})
	}

	if uint64(len(res)) > limit {
		res = res[:limit]
	}
	return res
}

func (s *store) findBySubject(subjectID string) *donation.Record {
	for _, item := range s.records {
		if item.SubjectID == subjectID {
			return item
		}
	}
	return nil
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.last = 0
}
