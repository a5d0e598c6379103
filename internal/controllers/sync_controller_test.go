package controllers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"nregastats/internal/controllers"
	"nregastats/internal/models"
	"nregastats/internal/syncer"
	"nregastats/internal/tasks"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SyncController", func() {
	var (
		router *gin.Engine
		fake   *fakeSyncer
		queue  *fakeQueue
		sc     *controllers.SyncController
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		fake = &fakeSyncer{result: syncer.Result{
			RunID:         "run-1",
			Success:       true,
			Status:        models.SyncStatusSuccess,
			RecordsSynced: 22,
			Errors:        []string{},
		}}
		queue = &fakeQueue{}
		sc = &controllers.SyncController{Syncer: fake, Timeout: time.Minute}

		router = gin.New()
		router.POST("/api/v1/sync", sc.TriggerSync)
		router.GET("/api/v1/sync", sc.Usage)
		router.GET("/api/v1/sync/logs", sc.GetLogs)
	})

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
		} else {
			req = httptest.NewRequest(http.MethodPost, "/api/v1/sync", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) map[string]interface{} {
		var body map[string]interface{}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		return body
	}

	Describe("POST /api/v1/sync", func() {
		It("runs a live current sync when the body is empty", func() {
			w := post("")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(fake.currentCalls).To(Equal([]syncer.Options{{UseMockData: false}}))
			Expect(fake.hadDeadline).To(BeTrue())

			body := decode(w)
			Expect(body["success"]).To(BeTrue())
			Expect(body["status"]).To(Equal("success"))
			Expect(body["recordsSynced"]).To(BeNumerically("==", 22))
			Expect(body["runId"]).To(Equal("run-1"))
		})

		It("passes the mock flag through", func() {
			w := post(`{"type":"current","useMockData":true}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(fake.currentCalls).To(Equal([]syncer.Options{{UseMockData: true}}))
		})

		It("runs a backfill for historical requests", func() {
			w := post(`{"type":"historical","monthsBack":3,"useMockData":true}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(fake.backfillCalls).To(Equal([]syncer.BackfillOptions{{MonthsBack: 3, UseMockData: true}}))
			Expect(fake.currentCalls).To(BeEmpty())

			body := decode(w)
			Expect(body["success"]).To(BeTrue())
			Expect(body["message"]).To(Equal("Historical data sync completed for 3 months"))
		})

		It("defaults a backfill to 12 months", func() {
			post(`{"type":"historical"}`)

			Expect(fake.backfillCalls).To(HaveLen(1))
			Expect(fake.backfillCalls[0].MonthsBack).To(Equal(12))
		})

		It("reports a backfill that stopped early", func() {
			fake.backfillErr = errors.New("context deadline exceeded")

			w := post(`{"type":"historical","monthsBack":2}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			body := decode(w)
			Expect(body["success"]).To(BeFalse())
			Expect(body["message"]).To(ContainSubstring("context deadline exceeded"))
		})

		It("returns the failed result of a current sync as is", func() {
			fake.result = syncer.Result{
				RunID:  "run-2",
				Status: models.SyncStatusFailed,
				Errors: []string{"fatal sync error for October 2025: upstream returned 503"},
			}

			w := post(`{"type":"current"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			body := decode(w)
			Expect(body["success"]).To(BeFalse())
			Expect(body["errors"]).To(ConsistOf("fatal sync error for October 2025: upstream returned 503"))
		})

		DescribeTable("rejects invalid requests",
			func(body string) {
				w := post(body)

				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(decode(w)["success"]).To(BeFalse())
				Expect(fake.currentCalls).To(BeEmpty())
				Expect(fake.backfillCalls).To(BeEmpty())
			},
			Entry("unknown type", `{"type":"weekly"}`),
			Entry("months back out of range", `{"type":"historical","monthsBack":500}`),
			Entry("malformed json", `{"type":`),
		)

		Context("with async set", func() {
			It("is rejected without a queue", func() {
				w := post(`{"async":true}`)

				Expect(w.Code).To(Equal(http.StatusBadRequest))
				Expect(fake.currentCalls).To(BeEmpty())
			})

			It("enqueues a current sync task", func() {
				sc.Queue = queue

				w := post(`{"async":true,"useMockData":true}`)

				Expect(w.Code).To(Equal(http.StatusAccepted))
				Expect(fake.currentCalls).To(BeEmpty())
				Expect(queue.tasks).To(HaveLen(1))
				Expect(queue.tasks[0].Type()).To(Equal(tasks.TypeTaskSyncCurrent))
				Expect(queue.opts[0]).To(HaveLen(1))

				var payload tasks.SyncCurrentPayload
				Expect(json.Unmarshal(queue.tasks[0].Payload(), &payload)).To(Succeed())
				Expect(payload.UseMockData).To(BeTrue())

				body := decode(w)
				Expect(body["taskId"]).To(Equal("task-1"))
			})

			It("enqueues a backfill task", func() {
				sc.Queue = queue

				w := post(`{"async":true,"type":"historical","monthsBack":6}`)

				Expect(w.Code).To(Equal(http.StatusAccepted))
				Expect(queue.tasks[0].Type()).To(Equal(tasks.TypeTaskSyncHistorical))

				var payload tasks.SyncHistoricalPayload
				Expect(json.Unmarshal(queue.tasks[0].Payload(), &payload)).To(Succeed())
				Expect(payload.MonthsBack).To(Equal(6))
				Expect(payload.UseMockData).To(BeFalse())
			})

			It("reports enqueue failures", func() {
				queue.err = errors.New("redis unavailable")
				sc.Queue = queue

				w := post(`{"async":true}`)

				Expect(w.Code).To(Equal(http.StatusInternalServerError))
				Expect(decode(w)["error"]).To(Equal("Something went wrong"))
			})
		})
	})

	Describe("GET /api/v1/sync", func() {
		It("describes how to trigger a sync", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["message"]).To(Equal("Use POST to trigger sync"))
		})
	})

	Describe("GET /api/v1/sync/logs", func() {
		BeforeEach(func() {
			for i := 0; i < 15; i++ {
				fake.runs = append(fake.runs, models.SyncRun{ID: uint(15 - i), Status: models.SyncStatusSuccess})
			}
		})

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
			return w
		}

		It("returns the 10 most recent runs by default", func() {
			w := get("/api/v1/sync/logs")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(fake.runsLimit).To(Equal(10))
			Expect(decode(w)["logs"]).To(HaveLen(10))
		})

		It("honours the limit parameter", func() {
			w := get("/api/v1/sync/logs?limit=3")

			Expect(fake.runsLimit).To(Equal(3))
			Expect(decode(w)["logs"]).To(HaveLen(3))
		})

		It("falls back to the default for a malformed limit", func() {
			get("/api/v1/sync/logs?limit=abc")

			Expect(fake.runsLimit).To(Equal(10))
		})

		It("caps the limit", func() {
			get("/api/v1/sync/logs?limit=5000")

			Expect(fake.runsLimit).To(Equal(100))
		})
	})
})
