package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/physview/internal/apiclient"
	"github.com/san-kum/physview/internal/formula"
	"github.com/san-kum/physview/internal/server"
	"github.com/san-kum/physview/internal/store"
)

type failingStore struct {
	err error
}

func (s failingStore) List(context.Context) ([]formula.Formula, error) { return nil, s.err }

func (s failingStore) Ping(context.Context) error { return s.err }

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	header http.Header
	status int
}

func (w *brokenWriter) Header() http.Header { return w.header }

func (w *brokenWriter) WriteHeader(code int) { w.status = code }

func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func serve(h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var _ = Describe("Server", func() {
	var (
		st      store.Store
		handler http.Handler
	)

	JustBeforeEach(func() {
		srv := server.New(server.Config{
			Addr:           "127.0.0.1:0",
			AllowedOrigins: []string{"http://localhost:3000"},
		}, st, zap.NewNop())
		handler = srv.Handler()
	})

	Context("with the built-in catalog", func() {
		BeforeEach(func() {
			st = store.NewMemory(formula.Catalog)
		})

		It("serves the formula list as JSON", func() {
			rec := serve(handler, http.MethodGet, apiclient.FormulasPath, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var got []formula.Formula
			Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
			Expect(got).To(Equal(formula.Catalog))
		})

		It("uses the wire field names", func() {
			rec := serve(handler, http.MethodGet, apiclient.FormulasPath, nil)
			Expect(rec.Body.String()).To(ContainSubstring(`"formula_name":"Momentum"`))
			Expect(rec.Body.String()).To(ContainSubstring(`"id":1`))
		})

		It("renders the HTML page with inline math delimiters", func() {
			rec := serve(handler, http.MethodGet, "/", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/html"))
			body := rec.Body.String()
			Expect(body).To(ContainSubstring("<h1>Physics Formula Viewer</h1>"))
			Expect(body).To(ContainSubstring("<strong>Newton&#39;s Second Law:</strong>"))
			Expect(body).To(ContainSubstring(`\(F = ma\)`))
		})

		It("returns 404 for unknown paths", func() {
			rec := serve(handler, http.MethodGet, "/nope", nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("rejects non-GET methods on the API", func() {
			rec := serve(handler, http.MethodPost, apiclient.FormulasPath, nil)
			Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
		})

		It("answers health and readiness probes", func() {
			rec := serve(handler, http.MethodGet, "/healthz", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("ok\n"))

			rec = serve(handler, http.MethodGet, "/readyz", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal("ready\n"))
		})

		Describe("CORS", func() {
			It("echoes an allowed origin", func() {
				rec := serve(handler, http.MethodGet, apiclient.FormulasPath,
					http.Header{"Origin": {"http://localhost:3000"}})
				Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("http://localhost:3000"))
				Expect(rec.Header().Values("Vary")).To(ContainElement("Origin"))
			})

			It("omits headers for other origins", func() {
				rec := serve(handler, http.MethodGet, apiclient.FormulasPath,
					http.Header{"Origin": {"http://evil.example"}})
				Expect(rec.Code).To(Equal(http.StatusOK))
				Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
			})

			It("answers preflight requests with 204", func() {
				rec := serve(handler, http.MethodOptions, apiclient.FormulasPath,
					http.Header{"Origin": {"http://localhost:3000"}})
				Expect(rec.Code).To(Equal(http.StatusNoContent))
				Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(ContainSubstring("GET"))
			})
		})

		It("is consumable by the API client", func() {
			ts := httptest.NewServer(handler)
			DeferCleanup(ts.Close)

			got, err := apiclient.New(ts.URL, time.Second).Fetch(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(formula.Catalog))
		})
	})

	Context("with an empty store", func() {
		BeforeEach(func() {
			st = store.NewMemory(nil)
		})

		It("serves an empty JSON array", func() {
			rec := serve(handler, http.MethodGet, apiclient.FormulasPath, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(MatchJSON(`[]`))
		})
	})

	Context("when the store fails", func() {
		BeforeEach(func() {
			st = failingStore{err: errors.New("connection refused")}
		})

		It("returns a JSON error with status 500", func() {
			rec := serve(handler, http.MethodGet, apiclient.FormulasPath, nil)
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).To(MatchJSON(`{"error":"connection refused"}`))
		})

		It("shows the error on the page", func() {
			rec := serve(handler, http.MethodGet, "/", nil)
			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(rec.Body.String()).To(ContainSubstring(`<p class="error">Error: connection refused</p>`))
		})

		It("reports not ready", func() {
			rec := serve(handler, http.MethodGet, "/readyz", nil)
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		})

		It("surfaces the status through the API client", func() {
			ts := httptest.NewServer(handler)
			DeferCleanup(ts.Close)

			_, err := apiclient.New(ts.URL, time.Second).Fetch(context.Background())
			var statusErr *apiclient.StatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("HTTP error! Status: 500"))
		})
	})

	Describe("tracing", func() {
		var sr *tracetest.SpanRecorder

		BeforeEach(func() {
			sr = tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
			otel.SetTracerProvider(tp)
			DeferCleanup(func() {
				otel.SetTracerProvider(noop.NewTracerProvider())
				tp.Shutdown(context.Background())
			})
		})

		spanNamed := func(name string) sdktrace.ReadOnlySpan {
			for _, s := range sr.Ended() {
				if s.Name() == name {
					return s
				}
			}
			return nil
		}

		Context("with a working store", func() {
			BeforeEach(func() {
				st = store.NewMemory(formula.Catalog)
			})

			It("records formulas.list with the count", func() {
				serve(handler, http.MethodGet, apiclient.FormulasPath, nil)

				span := spanNamed("formulas.list")
				Expect(span).NotTo(BeNil())
				Expect(span.Attributes()).To(ContainElement(attribute.Int("formulas.count", len(formula.Catalog))))
				Expect(span.Status().Code).To(Equal(codes.Unset))
			})

			It("records the client and server spans for one request", func() {
				ts := httptest.NewServer(handler)
				DeferCleanup(ts.Close)

				_, err := apiclient.New(ts.URL, time.Second).Fetch(context.Background())
				Expect(err).NotTo(HaveOccurred())

				fetch, list := spanNamed("formulas.fetch"), spanNamed("formulas.list")
				Expect(fetch).NotTo(BeNil())
				Expect(list).NotTo(BeNil())
				Expect(fetch.Attributes()).To(ContainElement(attribute.Int("http.status_code", http.StatusOK)))
			})
		})

		Context("when the store fails", func() {
			BeforeEach(func() {
				st = failingStore{err: errors.New("connection refused")}
			})

			It("marks formulas.list as an error", func() {
				rec := serve(handler, http.MethodGet, apiclient.FormulasPath, nil)
				Expect(rec.Code).To(Equal(http.StatusInternalServerError))

				span := spanNamed("formulas.list")
				Expect(span).NotTo(BeNil())
				Expect(span.Status().Code).To(Equal(codes.Error))
				Expect(span.Status().Description).To(Equal("connection refused"))
			})
		})
	})

	It("logs a failed JSON write at debug", func() {
		core, logs := observer.New(zapcore.DebugLevel)
		srv := server.New(server.Config{Addr: "127.0.0.1:0"}, store.NewMemory(formula.Catalog), zap.New(core))

		w := &brokenWriter{header: http.Header{}}
		srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, apiclient.FormulasPath, nil))

		Expect(w.status).To(Equal(http.StatusOK))
		entries := logs.FilterMessage("writing json response").All()
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Level).To(Equal(zapcore.DebugLevel))
		Expect(entries[0].ContextMap()).To(HaveKeyWithValue("error", "broken pipe"))
	})

	It("shuts down cleanly", func() {
		srv := server.New(server.Config{Addr: "127.0.0.1:0"}, store.NewMemory(nil), zap.NewNop())
		done := make(chan error, 1)
		go func() { done <- srv.ListenAndServe() }()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		Expect(srv.Shutdown(ctx)).To(Succeed())
		Eventually(done).Should(Receive(MatchError(http.ErrServerClosed)))
	})
})
