package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woofi-pets/donation-server/pkg/data/donation"
	"github.com/woofi-pets/donation-server/pkg/database/query"
)

func RunTests(t *testing.T, s donation.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s donation.Store){
		testHappyPath,
		testStaleSaveIgnored,
		testGetTopBySubject,
		testGetAllByLastUpdated,
		testGetAllByMint,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s donation.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		ctx := context.Background()

		start := time.Now()
		time.Sleep(time.Millisecond)

		_, err := s.Get(ctx, "dog-42")
		assert.Equal(t, donation.ErrRecordNotFound, err)

		record := &donation.Record{
			SubjectID:        "dog-42",
			Address:          "record-address-1",
			LastDonor:        "donor-1",
			CumulativeAmount: 1_000_000_000,
			DonationCount:    1,
		}
		require.NoError(t, s.Save(ctx, record))
		assert.True(t, record.Id > 0)

		actual, err := s.Get(ctx, "dog-42")
		require.NoError(t, err)
		require.NoError(t, actual.Validate())
		assert.Equal(t, "dog-42", actual.SubjectID)
		assert.Equal(t, "record-address-1", actual.Address)
		assert.Equal(t, "donor-1", actual.LastDonor)
		assert.EqualValues(t, 1_000_000_000, actual.CumulativeAmount)
		assert.EqualValues(t, 1, actual.DonationCount)
		assert.Empty(t, actual.Mint)
		assert.True(t, actual.LastUpdatedAt.After(start))
		assert.True(t, actual.CreatedAt.After(start))

		record.LastDonor = "donor-2"
		record.CumulativeAmount = 1_500_000_000
		record.DonationCount = 2
		record.Mint = "mint-1"
		require.NoError(t, s.Save(ctx, record))

		actual, err = s.Get(ctx, "dog-42")
		require.NoError(t, err)
		assert.Equal(t, "donor-2", actual.LastDonor)
		assert.EqualValues(t, 1_500_000_000, actual.CumulativeAmount)
		assert.EqualValues(t, 2, actual.DonationCount)
		assert.Equal(t, "mint-1", actual.Mint)
	})
}

func testStaleSaveIgnored(t *testing.T, s donation.Store) {
	t.Run("testStaleSaveIgnored", func(t *testing.T) {
		ctx := context.Background()

		require.NoError(t, s.Save(ctx, &donation.Record{
			SubjectID:        "dog-42",
			Address:          "record-address-1",
			LastDonor:        "donor-2",
			CumulativeAmount: 1_500_000_000,
			DonationCount:    2,
		}))

		// A refresh from an older confirmed snapshot must not move the
		// aggregate backwards.
		require.NoError(t, s.Save(ctx, &donation.Record{
			SubjectID:        "dog-42",
			Address:          "record-address-1",
			LastDonor:        "donor-1",
			CumulativeAmount: 1_000_000_000,
			DonationCount:    1,
		}))

		actual, err := s.Get(ctx, "dog-42")
		require.NoError(t, err)
		assert.Equal(t, "donor-2", actual.LastDonor)
		assert.EqualValues(t, 1_500_000_000, actual.CumulativeAmount)
		assert.EqualValues(t, 2, actual.DonationCount)
	})
}

func testGetTopBySubject(t *testing.T, s donation.Store) {
	t.Run("testGetTopBySubject", func(t *testing.T) {
		ctx := context.Background()

		records, err := s.GetTopBySubject(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, records)

		for i, amount := range []uint64{100, 500, 250} {
			require.NoError(t, s.Save(ctx, &donation.Record{
				SubjectID:        fmt.Sprintf("dog-%d", i),
				Address:          fmt.Sprintf("record-address-%d", i),
				LastDonor:        "donor-1",
				CumulativeAmount: amount,
				DonationCount:    1,
			}))
		}

		records, err = s.GetTopBySubject(ctx, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "dog-1", records[0].SubjectID)
		assert.Equal(t, "dog-2", records[1].SubjectID)

		records, err = s.GetTopBySubject(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})
}

func testGetAllByLastUpdated(t *testing.T, s donation.Store) {
	t.Run("testGetAllByLastUpdated", func(t *testing.T) {
		ctx := context.Background()

		records, err := s.GetAllByLastUpdated(ctx, query.Descending, 10)
		require.NoError(t, err)
		assert.Empty(t, records)

		for i := 0; i < 3; i++ {
			require.NoError(t, s.Save(ctx, &donation.Record{
				SubjectID:        fmt.Sprintf("dog-%d", i),
				Address:          fmt.Sprintf("record-address-%d", i),
				LastDonor:        "donor-1",
				CumulativeAmount: 100,
				DonationCount:    1,
			}))
			time.Sleep(time.Millisecond)
		}

		records, err = s.GetAllByLastUpdated(ctx, query.Descending, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "dog-2", records[0].SubjectID)
		assert.Equal(t, "dog-1", records[1].SubjectID)

		records, err = s.GetAllByLastUpdated(ctx, query.Ascending, 10)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "dog-0", records[0].SubjectID)
	})
}

func testGetAllByMint(t *testing.T, s donation.Store) {
	t.Run("testGetAllByMint", func(t *testing.T) {
		ctx := context.Background()

		_, err := s.GetAllByMint(ctx, "")
		assert.Equal(t, donation.ErrRecordNotFound, err)

		for i := 0; i < 3; i++ {
			require.NoError(t, s.Save(ctx, &donation.Record{
				SubjectID:        fmt.Sprintf("dog-%d", i),
				Address:          fmt.Sprintf("record-address-%d", i),
				LastDonor:        "donor-1",
				CumulativeAmount: 100,
				DonationCount:    1,
			}))
		}
		require.NoError(t, s.Save(ctx, &donation.Record{
			SubjectID:        "cat-1",
			Address:          "record-address-cat-1",
			LastDonor:        "donor-1",
			CumulativeAmount: 100,
			DonationCount:    1,
			Mint:             "mint-1",
		}))

		records, err := s.GetAllByMint(ctx, "")
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "dog-0", records[0].SubjectID)

		records, err = s.GetAllByMint(ctx, "", query.WithLimit(2))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "dog-0", records[0].SubjectID)
		assert.Equal(t, "dog-1", records[1].SubjectID)

		records, err = s.GetAllByMint(ctx, "", query.WithCursor(query.ToCursor(records[1].Id)))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "dog-2", records[0].SubjectID)

		records, err = s.GetAllByMint(ctx, "", query.WithDirection(query.Descending))
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "dog-2", records[0].SubjectID)

		records, err = s.GetAllByMint(ctx, "mint-1")
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "cat-1", records[0].SubjectID)

		_, err = s.GetAllByMint(ctx, "mint-2")
		assert.Equal(t, donation.ErrRecordNotFound, err)
	})
}
