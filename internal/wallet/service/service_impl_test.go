package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/heirloomlabs/heirloom/internal/clock"
	"github.com/heirloomlabs/heirloom/internal/wallet/domain"
	"github.com/heirloomlabs/heirloom/internal/wallet/repository"
	"github.com/heirloomlabs/heirloom/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// A single connection keeps the in-memory database alive and serializes
	// concurrent transactions the way a server-side database would.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Wallet{}, &domain.SeatTransaction{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: fake,
	})
	return svc, db, fake
}

func TestGetOrInitCreatesZeroWallet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	wallet, err := svc.GetOrInit(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, snowflake.ID(101), wallet.UserID)
	assert.True(t, wallet.AllZero())
}

func TestGetOrInitIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, 101, domain.ResourceProjectVoucher, 2, nil, domain.Metadata{})
	require.NoError(t, err)

	wallet, err := svc.GetOrInit(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, uint(2), wallet.ProjectVouchers)
}

func TestConsumeDecrementsAndAppendsLedger(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, 101, domain.ResourceFacilitatorSeat, 3, nil, domain.Metadata{})
	require.NoError(t, err)

	projectID := snowflake.ID(555)
	err = svc.Consume(ctx, 101, domain.ResourceFacilitatorSeat, 1, &projectID, domain.Metadata{Note: "invite"})
	require.NoError(t, err)

	wallet, err := svc.GetOrInit(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, uint(2), wallet.FacilitatorSeats)

	txns, _, err := svc.ListTransactions(ctx, 101, pagination.Pagination{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, txns, 2)

	consume := txns[0]
	assert.Equal(t, domain.TransactionConsume, consume.TransactionType)
	assert.Equal(t, domain.ResourceFacilitatorSeat, consume.ResourceType)
	assert.Equal(t, uint(1), consume.Amount)
	require.NotNil(t, consume.RelatedProjectID)
	assert.Equal(t, projectID, *consume.RelatedProjectID)
	assert.NotEmpty(t, consume.Metadata["reference"])
}

func TestConsumeInsufficientBalance(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	err := svc.Consume(ctx, 101, domain.ResourceStorytellerSeat, 1, nil, domain.Metadata{})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	// A failed consume leaves no ledger entry behind.
	txns, _, err := svc.ListTransactions(ctx, 101, pagination.Pagination{PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestConsumeNeverGoesNegative(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, 101, domain.ResourceStorytellerSeat, 1, nil, domain.Metadata{})
	require.NoError(t, err)

	require.NoError(t, svc.Consume(ctx, 101, domain.ResourceStorytellerSeat, 1, nil, domain.Metadata{}))
	err = svc.Consume(ctx, 101, domain.ResourceStorytellerSeat, 1, nil, domain.Metadata{})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	wallet, err := svc.GetOrInit(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, uint(0), wallet.StorytellerSeats)
}

func TestConsumeValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Consume(ctx, 0, domain.ResourceProjectVoucher, 1, nil, domain.Metadata{}), domain.ErrInvalidUser)
	assert.ErrorIs(t, svc.Consume(ctx, 101, "unknown", 1, nil, domain.Metadata{}), domain.ErrInvalidResource)
	assert.ErrorIs(t, svc.Consume(ctx, 101, domain.ResourceProjectVoucher, 0, nil, domain.Metadata{}), domain.ErrInvalidAmount)
}

func TestBootstrapGrantAppliesOnce(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	applied, err := svc.ConditionalBootstrapGrant(ctx, 101, 1, 1, 2)
	require.NoError(t, err)
	assert.True(t, applied)

	wallet, err := svc.GetOrInit(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, uint(1), wallet.ProjectVouchers)
	assert.Equal(t, uint(1), wallet.FacilitatorSeats)
	assert.Equal(t, uint(2), wallet.StorytellerSeats)

	// Second pass sees a non-zero wallet and leaves it alone.
	applied, err = svc.ConditionalBootstrapGrant(ctx, 101, 1, 1, 2)
	require.NoError(t, err)
	assert.False(t, applied)

	wallet, err = svc.GetOrInit(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, uint(1), wallet.ProjectVouchers)

	txns, _, err := svc.ListTransactions(ctx, 101, pagination.Pagination{PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, txns, 3)
	for _, txn := range txns {
		assert.Equal(t, domain.TransactionGrant, txn.TransactionType)
		assert.Equal(t, "starter_allotment", txn.Metadata["grant_source"])
	}
}

func TestBootstrapGrantSkipsNonZeroWallet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, 101, domain.ResourceProjectVoucher, 1, nil, domain.Metadata{})
	require.NoError(t, err)

	applied, err := svc.ConditionalBootstrapGrant(ctx, 101, 1, 1, 2)
	require.NoError(t, err)
	assert.False(t, applied)

	wallet, err := svc.GetOrInit(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, uint(1), wallet.ProjectVouchers)
	assert.Equal(t, uint(0), wallet.FacilitatorSeats)
}

func TestConcurrentConsumeSpendsExactlyOnce(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, 101, domain.ResourceFacilitatorSeat, 1, nil, domain.Metadata{})
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Consume(ctx, 101, domain.ResourceFacilitatorSeat, 1, nil, domain.Metadata{})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		}
	}
	assert.Equal(t, 1, succeeded)

	wallet, err := svc.GetOrInit(ctx, 101)
	require.NoError(t, err)
	assert.Equal(t, uint(0), wallet.FacilitatorSeats)
}

func TestListTransactionsPagination(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Grant(ctx, 101, domain.ResourceStorytellerSeat, 1, nil, domain.Metadata{})
		require.NoError(t, err)
	}

	var seen []snowflake.ID
	page := pagination.Pagination{PageSize: 2}
	for {
		txns, info, err := svc.ListTransactions(ctx, 101, page)
		require.NoError(t, err)
		for _, txn := range txns {
			seen = append(seen, txn.ID)
		}
		if !info.HasMore {
			break
		}
		require.NotEmpty(t, info.NextPageToken)
		page.PageToken = info.NextPageToken
	}

	require.Len(t, seen, 5)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, int64(seen[i-1]), int64(seen[i]))
	}

	_, _, err := svc.ListTransactions(ctx, 101, pagination.Pagination{PageToken: "not-base64!"})
	assert.ErrorIs(t, err, domain.ErrInvalidPageToken)
}

func TestListTransactionsNewestFirst(t *testing.T) {
	svc, _, fake := newTestService(t)
	ctx := context.Background()

	_, err := svc.Grant(ctx, 101, domain.ResourceProjectVoucher, 1, nil, domain.Metadata{})
	require.NoError(t, err)
	fake.Advance(time.Minute)
	_, err = svc.Grant(ctx, 101, domain.ResourceFacilitatorSeat, 1, nil, domain.Metadata{})
	require.NoError(t, err)

	txns, _, err := svc.ListTransactions(ctx, 101, pagination.Pagination{PageSize: 10})
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, domain.ResourceFacilitatorSeat, txns[0].ResourceType)
	assert.Equal(t, domain.ResourceProjectVoucher, txns[1].ResourceType)
}
