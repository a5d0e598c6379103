package retry_test

import (
	"context"
	"errors"
	"nregastats/internal/pkg/retry"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var errTransient = errors.New("transient")
var errFatal = errors.New("fatal")

func isTransient(err error) bool { return errors.Is(err, errTransient) }

var _ = Describe("Policy", func() {
	var (
		policy retry.Policy
		slept  []time.Duration
	)

	BeforeEach(func() {
		slept = nil
		policy = retry.Default()
		policy.Jitter = func(time.Duration) time.Duration { return 0 }
		policy.Sleep = func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}
	})

	Describe("Delay", func() {
		It("doubles from the base delay and caps at the max delay", func() {
			Expect(policy.Delay(0)).To(Equal(1 * time.Second))
			Expect(policy.Delay(1)).To(Equal(2 * time.Second))
			Expect(policy.Delay(2)).To(Equal(4 * time.Second))
			Expect(policy.Delay(3)).To(Equal(8 * time.Second))
			Expect(policy.Delay(4)).To(Equal(10 * time.Second))
			Expect(policy.Delay(100)).To(Equal(10 * time.Second))
		})

		It("adds jitter within [0, MaxJitter]", func() {
			policy.Jitter = nil
			for i := 0; i < 200; i++ {
				d := policy.Delay(0)
				Expect(d).To(BeNumerically(">=", time.Second))
				Expect(d).To(BeNumerically("<=", 2*time.Second))
			}
		})
	})

	Describe("Do", func() {
		It("makes exactly MaxRetries+1 attempts when every attempt is retryable", func() {
			calls := 0
			_, out, err := retry.Do(context.Background(), policy, isTransient, func(context.Context, int) (int, error) {
				calls++
				return 0, errTransient
			})

			Expect(err).To(MatchError(errTransient))
			Expect(calls).To(Equal(4))
			Expect(out.Attempts).To(Equal(4))
			Expect(out.Exhausted).To(BeTrue())
			Expect(slept).To(Equal([]time.Duration{time.Second, 2 * time.Second, 4 * time.Second}))
		})

		It("stops after the first non-retryable error", func() {
			calls := 0
			_, out, err := retry.Do(context.Background(), policy, isTransient, func(context.Context, int) (int, error) {
				calls++
				return 0, errFatal
			})

			Expect(err).To(MatchError(errFatal))
			Expect(calls).To(Equal(1))
			Expect(out.Exhausted).To(BeFalse())
			Expect(slept).To(BeEmpty())
		})

		It("returns the value once an attempt succeeds", func() {
			v, out, err := retry.Do(context.Background(), policy, isTransient, func(_ context.Context, attempt int) (string, error) {
				if attempt < 2 {
					return "", errTransient
				}
				return "ok", nil
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("ok"))
			Expect(out.Attempts).To(Equal(3))
		})

		It("gives up when the context ends during a wait", func() {
			ctx, cancel := context.WithCancel(context.Background())
			policy.Sleep = func(ctx context.Context, _ time.Duration) error {
				cancel()
				return ctx.Err()
			}

			calls := 0
			_, _, err := retry.Do(ctx, policy, isTransient, func(context.Context, int) (int, error) {
				calls++
				return 0, errTransient
			})

			Expect(err).To(MatchError(context.Canceled))
			Expect(calls).To(Equal(1))
		})

		It("reports each retry through OnRetry", func() {
			var attempts []int
			policy.OnRetry = func(attempt int, _ time.Duration, _ error) {
				attempts = append(attempts, attempt)
			}
			policy.MaxRetries = 2

			_, _, _ = retry.Do(context.Background(), policy, isTransient, func(context.Context, int) (int, error) {
				return 0, errTransient
			})
			Expect(attempts).To(Equal([]int{0, 1}))
		})
	})

	It("SleepContext returns early on cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(retry.SleepContext(ctx, time.Hour)).To(MatchError(context.Canceled))
	})
})
