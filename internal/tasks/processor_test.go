package tasks_test

import (
	"context"
	"errors"
	"nregastats/internal/models"
	"nregastats/internal/pkg/datagov"
	"nregastats/internal/registry"
	"nregastats/internal/store"
	"nregastats/internal/syncer"
	"nregastats/internal/tasks"
	"time"

	"github.com/hibiken/asynq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type failingFetcher struct{}

func (failingFetcher) FetchStatePeriod(context.Context, string, datagov.Period) ([]datagov.RawRecord, error) {
	return nil, &datagov.FetchError{Attempts: 4, Retryable: true, Err: errors.New("connection reset")}
}

var _ = Describe("TaskProcessor", func() {
	var (
		mem *store.Memory
		p   *tasks.TaskProcessor
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		mem = store.NewMemory()

		s := syncer.New(syncer.Config{
			State:        "HARYANA",
			StateDisplay: "Haryana",
			Now:          func() time.Time { return time.Date(2025, time.March, 1, 2, 0, 0, 0, time.UTC) },
			Sleep:        func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
		}, failingFetcher{}, mem, registry.Haryana())

		p = tasks.NewTaskProcessor(s)
	})

	Describe("HandleSyncCurrentTask", func() {
		It("runs a mock sync and logs the run", func() {
			task, err := tasks.NewSyncCurrentTask(true)
			Expect(err).NotTo(HaveOccurred())
			Expect(task.Type()).To(Equal(tasks.TypeTaskSyncCurrent))

			Expect(p.HandleSyncCurrentTask(ctx, task)).To(Succeed())

			runs, err := mem.RecentSyncRuns(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].Status).To(Equal(models.SyncStatusSuccess))
			Expect(runs[0].RecordsSynced).To(Equal(len(registry.Haryana().List())))
		})

		It("does not hand a failed sync back for retry", func() {
			task, err := tasks.NewSyncCurrentTask(false)
			Expect(err).NotTo(HaveOccurred())

			Expect(p.HandleSyncCurrentTask(ctx, task)).To(Succeed())

			runs, err := mem.RecentSyncRuns(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(runs[0].Status).To(Equal(models.SyncStatusFailed))
		})

		It("skips retries for a malformed payload", func() {
			err := p.HandleSyncCurrentTask(ctx, asynq.NewTask(tasks.TypeTaskSyncCurrent, []byte("{")))
			Expect(errors.Is(err, asynq.SkipRetry)).To(BeTrue())
		})
	})

	Describe("HandleSyncHistoricalTask", func() {
		It("backfills the requested months", func() {
			task, err := tasks.NewSyncHistoricalTask(3, true)
			Expect(err).NotTo(HaveOccurred())

			Expect(p.HandleSyncHistoricalTask(ctx, task)).To(Succeed())

			st, err := mem.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Performances).To(BeEquivalentTo(3 * len(registry.Haryana().List())))
			Expect(st.LastSync.Mode).To(Equal("historical"))
		})

		It("treats a deadline as the end of the backfill", func() {
			task, err := tasks.NewSyncHistoricalTask(3, true)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(ctx)
			cancel()

			Expect(p.HandleSyncHistoricalTask(ctx, task)).To(Succeed())
		})

		It("skips retries for a malformed payload", func() {
			err := p.HandleSyncHistoricalTask(ctx, asynq.NewTask(tasks.TypeTaskSyncHistorical, []byte("nope")))
			Expect(errors.Is(err, asynq.SkipRetry)).To(BeTrue())
		})
	})

	It("registers both task types", func() {
		mux := asynq.NewServeMux()
		p.Register(mux)

		for _, typ := range []string{tasks.TypeTaskSyncCurrent, tasks.TypeTaskSyncHistorical} {
			_, pattern := mux.Handler(asynq.NewTask(typ, nil))
			Expect(pattern).To(Equal(typ))
		}
	})
})
