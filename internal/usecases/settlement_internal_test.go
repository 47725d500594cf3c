package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeg struct {
	name      string
	log       *[]string
	checkErr  error
	applyErr  error
	revertErr error
	finalErr  error
}

func (l fakeLeg) check(context.Context) error {
	*l.log = append(*l.log, "check "+l.name)
	return l.checkErr
}

func (l fakeLeg) apply(context.Context) error {
	*l.log = append(*l.log, "apply "+l.name)
	return l.applyErr
}

func (l fakeLeg) revert(context.Context) error {
	*l.log = append(*l.log, "revert "+l.name)
	return l.revertErr
}

func (l fakeLeg) finalize(context.Context) error {
	*l.log = append(*l.log, "finalize "+l.name)
	return l.finalErr
}

func (l fakeLeg) String() string { return l.name }

func TestSettle_ChecksEverythingBeforeApplying(t *testing.T) {
	var log []string
	legs := []settlementLeg{
		fakeLeg{name: "a", log: &log},
		fakeLeg{name: "b", log: &log},
	}

	applied, err := settle(context.Background(), legs)
	require.NoError(t, err)
	assert.Len(t, applied, 2)
	assert.Equal(t, []string{"check a", "check b", "apply a", "apply b"}, log)
}

func TestSettle_CheckFailureAppliesNothing(t *testing.T) {
	var log []string
	denied := errors.New("not approved")
	legs := []settlementLeg{
		fakeLeg{name: "a", log: &log},
		fakeLeg{name: "b", log: &log, checkErr: denied},
	}

	applied, err := settle(context.Background(), legs)
	require.ErrorIs(t, err, denied)
	assert.Nil(t, applied)
	assert.Equal(t, []string{"check a", "check b"}, log)
}

func TestSettle_ApplyFailureRevertsNewestFirst(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	legs := []settlementLeg{
		fakeLeg{name: "a", log: &log},
		fakeLeg{name: "b", log: &log},
		fakeLeg{name: "c", log: &log, applyErr: boom},
	}

	applied, err := settle(context.Background(), legs)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, applied)
	assert.Equal(t, []string{
		"check a", "check b", "check c",
		"apply a", "apply b", "apply c",
		"revert b", "revert a",
	}, log)
}

func TestCompensate_ContinuesPastFailures(t *testing.T) {
	var log []string
	stuck := errors.New("stuck")
	applied := []settlementLeg{
		fakeLeg{name: "a", log: &log},
		fakeLeg{name: "b", log: &log, revertErr: stuck},
	}

	err := compensate(context.Background(), applied)
	require.ErrorIs(t, err, stuck)
	assert.Equal(t, []string{"revert b", "revert a"}, log)
}

func TestFinalize_VisitsEveryLegInOrder(t *testing.T) {
	var log []string
	gone := errors.New("gone")
	applied := []settlementLeg{
		fakeLeg{name: "a", log: &log, finalErr: gone},
		fakeLeg{name: "b", log: &log},
	}

	err := finalize(context.Background(), applied)
	require.ErrorIs(t, err, gone)
	assert.Equal(t, []string{"finalize a", "finalize b"}, log)
}

func TestRegistryLockKeys(t *testing.T) {
	assert.Equal(t, "swap:lock:0xabc", registryLockKey("0xabc"))
	assert.Equal(t, "swap:lock:ledgers", LedgerLockKey)
	assert.Equal(t, "swap:lock:factory:0xabc", factoryLockKey("0xabc"))
}
