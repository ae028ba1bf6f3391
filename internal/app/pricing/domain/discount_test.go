package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscount_ApplyTo(t *testing.T) {
	t.Run("percentage points", func(t *testing.T) {
		d := &Discount{Kind: KindNormal, Percentage: true}
		got := d.ApplyTo(MustParseMoney("10"), MustParseMoney("25"))
		assert.Equal(t, "7.5", got.String())
	})

	t.Run("fixed amount", func(t *testing.T) {
		d := &Discount{Kind: KindNoRefund, Percentage: false}
		got := d.ApplyTo(MustParseMoney("11.25"), MustParseMoney("0.5"))
		assert.Equal(t, "10.75", got.String())
	})

	t.Run("zero value leaves the amount", func(t *testing.T) {
		d := &Discount{Kind: KindPackage, Percentage: true}
		got := d.ApplyTo(MustParseMoney("101"), Zero())
		assert.Equal(t, "101", got.String())
	})

	t.Run("fixed amount above the price stops at zero", func(t *testing.T) {
		d := &Discount{Kind: KindNormal, Percentage: false}
		got := d.ApplyTo(MustParseMoney("10"), MustParseMoney("15"))
		assert.True(t, got.IsZero())
		assert.Equal(t, "0", got.String())
	})

	t.Run("percentage above 100 stops at zero", func(t *testing.T) {
		d := &Discount{Kind: KindNormal, Percentage: true}
		got := d.ApplyTo(MustParseMoney("10"), MustParseMoney("150"))
		assert.True(t, got.IsZero())
	})
}

func TestRoomDiscount_Validate(t *testing.T) {
	day := day1
	tests := []struct {
		name    string
		rd      RoomDiscount
		wantErr error
	}{
		{"valid", RoomDiscount{RoomID: "r1", DiscountID: "d1", Date: day, Value: MustParseMoney("5")}, nil},
		{"nil value", RoomDiscount{RoomID: "r1", DiscountID: "d1", Date: day}, ErrMissingDiscountValue},
		{"no room", RoomDiscount{DiscountID: "d1", Date: day, Value: Zero()}, ErrEmptyRoomID},
		{"no discount", RoomDiscount{RoomID: "r1", Date: day, Value: Zero()}, ErrDiscountNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rd.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDiscount_Permits(t *testing.T) {
	d := &Discount{Kind: KindNormal, Apply: StackFlags{NoRefund: true, Period: true}}

	assert.True(t, d.Permits(KindNoRefund))
	assert.True(t, d.Permits(KindPeriod))
	assert.False(t, d.Permits(KindCreditCard))
	assert.False(t, d.Permits(KindPackage))
	assert.False(t, d.Permits(KindSpecial))
}

func TestDiscount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       Discount
		wantErr error
	}{
		{"normal", Discount{Kind: KindNormal}, nil},
		{"package window", Discount{Kind: KindPackage, Days: 3, AtPriceDays: 2}, nil},
		{"unknown kind", Discount{Kind: KindUnknown}, ErrInvalidKind},
		{"at price equals days", Discount{Kind: KindPackage, Days: 3, AtPriceDays: 3}, ErrInvalidWindow},
		{"no charged days", Discount{Kind: KindPeriod, Days: 3}, ErrInvalidWindow},
		{"negative", Discount{Kind: KindPeriod, Days: -1}, ErrInvalidWindow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.d.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDiscount_HasWindow(t *testing.T) {
	assert.True(t, (&Discount{Kind: KindPackage, Days: 3, AtPriceDays: 2}).HasWindow())
	assert.True(t, (&Discount{Kind: KindPeriod, Days: 7, AtPriceDays: 6}).HasWindow())
	assert.False(t, (&Discount{Kind: KindNormal, Days: 3, AtPriceDays: 2}).HasWindow())
	assert.False(t, (&Discount{Kind: KindPackage}).HasWindow())
}

func TestDiscountKind(t *testing.T) {
	for _, k := range PrimaryKinds {
		assert.True(t, k.IsPrimary(), k.String())
	}
	assert.False(t, KindNoRefund.IsPrimary())
	assert.Equal(t, ClassSecondary, KindCreditCard.Class())
	assert.Equal(t, ClassNone, KindUnknown.Class())

	k, err := ParseDiscountKind(" Last_Minute ")
	require.NoError(t, err)
	assert.Equal(t, KindLastMinute, k)

	_, err = ParseDiscountKind("weekend")
	assert.ErrorIs(t, err, ErrInvalidKind)

	var decoded DiscountKind
	require.NoError(t, decoded.UnmarshalText([]byte("creditcard")))
	assert.Equal(t, KindCreditCard, decoded)
	text, err := KindPeriod.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "period", string(text))
}

func TestCandidateStacks(t *testing.T) {
	norm := &Discount{ID: "norm", Kind: KindNormal, Apply: StackFlags{Period: true, Package: true}}
	period := &Discount{ID: "period", Kind: KindPeriod, Apply: StackFlags{Package: true}}
	pkg := &Discount{ID: "pkg", Kind: KindPackage}
	special := &Discount{ID: "special", Kind: KindSpecial}
	norefund := &Discount{ID: "nr", Kind: KindNoRefund}

	// Insertion order does not decide the chain order.
	cals := groupDiscountDays([]DiscountDay{
		{Discount: pkg, Date: day(1), Value: Zero()},
		{Discount: special, Date: day(1), Value: Zero()},
		{Discount: period, Date: day(1), Value: Zero()},
		{Discount: norefund, Date: day(1), Value: Zero()},
		{Discount: norm, Date: day(1), Value: Zero()},
	})

	var got [][]string
	for _, s := range candidateStacks(cals) {
		got = append(got, s.IDs())
	}
	assert.ElementsMatch(t, [][]string{
		{"norm"},
		{"norm", "period"},
		{"norm", "period", "pkg"},
		{"norm", "pkg"},
		{"period"},
		{"period", "pkg"},
		{"pkg"},
		{"special"},
	}, got)

	t.Run("secondaries alone give the empty stack", func(t *testing.T) {
		stacks := candidateStacks(groupDiscountDays([]DiscountDay{{Discount: norefund, Date: day(1), Value: Zero()}}))
		require.Len(t, stacks, 1)
		assert.Empty(t, stacks[0].IDs())
		assert.True(t, stacks[0].permits(KindNoRefund))
	})
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("creditcard")
	require.NoError(t, err)
	assert.Equal(t, KindCreditCard, p.Secondary)

	_, err = PolicyByName("loyalty")
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
