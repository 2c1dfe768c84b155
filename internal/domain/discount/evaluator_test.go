package discount

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockRepo struct {
	byCode      map[string]*UserDiscount
	findErr     error
	created     []*UserDiscount
	createErr   error
	incremented []string
	incrementOK bool
}

func (m *mockRepo) FindByCode(_ context.Context, _ string, code string) (*UserDiscount, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	d, ok := m.byCode[code]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) ListForUser(_ context.Context, _ string) ([]UserDiscount, error) {
	out := make([]UserDiscount, 0, len(m.byCode))
	for _, d := range m.byCode {
		out = append(out, *d)
	}
	return out, nil
}

func (m *mockRepo) Create(_ context.Context, d *UserDiscount) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, d)
	return nil
}

func (m *mockRepo) IncrementUsage(_ context.Context, id string) (bool, error) {
	m.incremented = append(m.incremented, id)
	return m.incrementOK, nil
}

// --- Helpers ---

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func activeDiscount(code string, typ Type, value int64) *UserDiscount {
	return &UserDiscount{
		ID:         "d-" + code,
		Code:       code,
		Type:       typ,
		Value:      decimal.NewFromInt(value),
		UsageLimit: 10,
		StartDate:  testNow.Add(-24 * time.Hour),
		EndDate:    testNow.Add(24 * time.Hour),
		IsGlobal:   true,
	}
}

func newEvaluator(discounts ...*UserDiscount) *Evaluator {
	byCode := make(map[string]*UserDiscount, len(discounts))
	for _, d := range discounts {
		byCode[d.Code] = d
	}
	e := NewEvaluator(&mockRepo{byCode: byCode})
	e.now = func() time.Time { return testNow }
	return e
}

// --- Tests ---

func TestEvaluate_EmptyCode(t *testing.T) {
	e := newEvaluator()

	res, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(1000), "")
	require.NoError(t, err)
	assert.True(t, res.Amount.IsZero())
	assert.Empty(t, res.Code)
	assert.Nil(t, res.Applied)
}

func TestEvaluate_BlankCodeSkipsLookup(t *testing.T) {
	repo := &mockRepo{findErr: errors.New("lookup must not happen")}
	e := NewEvaluator(repo)
	e.now = func() time.Time { return testNow }

	res, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(1000), "   ")
	require.NoError(t, err)
	assert.True(t, res.Amount.IsZero())
}

func TestEvaluate_NormalizesCode(t *testing.T) {
	e := newEvaluator(activeDiscount("SAVE10", TypePercentage, 10))

	res, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(1000), "  save10 ")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", res.Code)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(100)), "got %s", res.Amount)
}

func TestEvaluate_UnknownCode(t *testing.T) {
	e := newEvaluator()

	_, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(1000), "NOPE")
	de := AsError(err)
	require.NotNil(t, de)
	assert.Equal(t, ReasonInvalid, de.Reason)
}

func TestEvaluate_NotStarted(t *testing.T) {
	d := activeDiscount("SOON", TypePercentage, 10)
	d.StartDate = testNow.Add(time.Hour)
	e := newEvaluator(d)

	_, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(1000), "SOON")
	de := AsError(err)
	require.NotNil(t, de)
	assert.Equal(t, ReasonNotStarted, de.Reason)
}

func TestEvaluate_Expired(t *testing.T) {
	d := activeDiscount("OLD", TypePercentage, 10)
	d.EndDate = testNow.Add(-time.Hour)
	e := newEvaluator(d)

	_, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(1000), "OLD")
	de := AsError(err)
	require.NotNil(t, de)
	assert.Equal(t, ReasonExpired, de.Reason)
}

func TestEvaluate_BoundaryInstantsAreValid(t *testing.T) {
	d := activeDiscount("EDGE", TypePercentage, 10)
	d.StartDate = testNow
	d.EndDate = testNow
	e := newEvaluator(d)

	res, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(1000), "EDGE")
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(100)))
}

func TestEvaluate_UsageLimitReached(t *testing.T) {
	d := activeDiscount("MAXED", TypePercentage, 10)
	d.UsageLimit = 3
	d.UsedCount = 3
	e := newEvaluator(d)

	_, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(1000), "MAXED")
	de := AsError(err)
	require.NotNil(t, de)
	assert.Equal(t, ReasonUsageLimit, de.Reason)
}

func TestEvaluate_MinOrderAmountCarriesMinimum(t *testing.T) {
	min := decimal.NewFromInt(2000)
	d := activeDiscount("BIG200", TypeFixed, 200)
	d.MinOrderAmount = &min
	e := newEvaluator(d)

	_, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(1500), "BIG200")
	de := AsError(err)
	require.NotNil(t, de)
	assert.Equal(t, ReasonMinAmount, de.Reason)
	require.NotNil(t, de.MinOrderAmount)
	assert.True(t, de.MinOrderAmount.Equal(min))
}

func TestEvaluate_MinOrderAmountMetExactly(t *testing.T) {
	min := decimal.NewFromInt(2000)
	d := activeDiscount("BIG200", TypeFixed, 200)
	d.MinOrderAmount = &min
	e := newEvaluator(d)

	res, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(2000), "BIG200")
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(200)))
}

func TestEvaluate_PercentageCappedByMaxDiscount(t *testing.T) {
	maxDiscount := decimal.NewFromInt(50)
	d := activeDiscount("TEN", TypePercentage, 10)
	d.MaxDiscount = &maxDiscount
	e := newEvaluator(d)

	res, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(1000), "TEN")
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(maxDiscount), "got %s", res.Amount)
}

func TestEvaluate_FixedCappedAtSubtotal(t *testing.T) {
	d := activeDiscount("BIG", TypeFixed, 500)
	e := newEvaluator(d)

	res, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(300), "BIG")
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(300)), "got %s", res.Amount)
}

func TestEvaluate_AmountRoundedToTwoPlaces(t *testing.T) {
	d := activeDiscount("ODD", TypePercentage, 33)
	e := newEvaluator(d)

	res, err := e.Evaluate(context.Background(), "u1", decimal.RequireFromString("99.99"), "ODD")
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(decimal.RequireFromString("33.00")), "got %s", res.Amount)
}

func TestEvaluate_ReturnsAppliedDiscount(t *testing.T) {
	d := activeDiscount("SAVE10", TypePercentage, 10)
	e := newEvaluator(d)

	res, err := e.Evaluate(context.Background(), "u1", decimal.NewFromInt(1000), "SAVE10")
	require.NoError(t, err)
	require.NotNil(t, res.Applied)
	assert.Equal(t, d.ID, res.Applied.ID)
}
