package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/coursecatalog/internal/consistency"
	"github.com/mrlokans/coursecatalog/internal/logger"
)

type fakeRunner struct {
	report    *consistency.Report
	checkErr  error
	repairErr error
	repairs   int
}

func (f *fakeRunner) Check(context.Context) (*consistency.Report, error) {
	return f.report, f.checkErr
}

func (f *fakeRunner) Repair(context.Context) (*consistency.RepairResult, error) {
	f.repairs++
	return &consistency.RepairResult{FilesWritten: []string{"modules.json"}}, f.repairErr
}

type fakeJournal struct {
	checks  []string
	repairs []string
}

func (j *fakeJournal) LogCheck(opID string, _ *consistency.Report, _ error) {
	j.checks = append(j.checks, opID)
}

func (j *fakeJournal) LogRepair(opID string, _ *consistency.RepairResult, _ error) {
	j.repairs = append(j.repairs, opID)
}

func diverged() *consistency.Report {
	return &consistency.Report{Issues: []consistency.Issue{{Severity: consistency.SeverityError, Kind: consistency.KindDivergedCopy}}}
}

func TestConsistencyCheckTaskConfig(t *testing.T) {
	cfg := ConsistencyCheckTask{}.Config()

	assert.Equal(t, "consistency_check", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
}

func TestConsistencyCheckProcessor(t *testing.T) {
	ctx := context.Background()

	t.Run("consistent catalog is not repaired", func(t *testing.T) {
		runner := &fakeRunner{report: &consistency.Report{}}
		journal := &fakeJournal{}

		err := ConsistencyCheckProcessor(runner, journal, logger.Nop())(ctx, ConsistencyCheckTask{OperationID: "op-1", Repair: true})
		require.NoError(t, err)
		assert.Equal(t, 0, runner.repairs)
		assert.Equal(t, []string{"op-1"}, journal.checks)
	})

	t.Run("errors without repair flag only report", func(t *testing.T) {
		runner := &fakeRunner{report: diverged()}

		err := ConsistencyCheckProcessor(runner, nil, logger.Nop())(ctx, ConsistencyCheckTask{})
		require.NoError(t, err)
		assert.Equal(t, 0, runner.repairs)
	})

	t.Run("errors with repair flag trigger repair", func(t *testing.T) {
		runner := &fakeRunner{report: diverged()}
		journal := &fakeJournal{}

		err := ConsistencyCheckProcessor(runner, journal, logger.Nop())(ctx, ConsistencyCheckTask{OperationID: "op-2", Repair: true})
		require.NoError(t, err)
		assert.Equal(t, 1, runner.repairs)
		assert.Equal(t, []string{"op-2"}, journal.repairs)
	})

	t.Run("check failure is returned for retry", func(t *testing.T) {
		runner := &fakeRunner{checkErr: errors.New("read courses.json: permission denied")}

		err := ConsistencyCheckProcessor(runner, nil, logger.Nop())(ctx, ConsistencyCheckTask{})
		assert.ErrorContains(t, err, "permission denied")
	})

	t.Run("repair failure is returned", func(t *testing.T) {
		runner := &fakeRunner{report: diverged(), repairErr: errors.New("disk full")}

		err := ConsistencyCheckProcessor(runner, nil, logger.Nop())(ctx, ConsistencyCheckTask{Repair: true})
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("missing runner", func(t *testing.T) {
		err := ConsistencyCheckProcessor(nil, nil, logger.Nop())(ctx, ConsistencyCheckTask{})
		assert.Error(t, err)
	})
}
