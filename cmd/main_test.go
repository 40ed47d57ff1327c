package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	app "github.com/okian/mergington/internal/app"
	"github.com/okian/mergington/internal/config"
	"github.com/okian/mergington/internal/domain/types"
	"github.com/okian/mergington/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When loading configuration from the environment", func() {
			_ = os.Setenv("MERGINGTON_ADDR", ":8080")
			_ = os.Setenv("MERGINGTON_CHANGE_QUEUE_SIZE", "100")
			_ = os.Setenv("MERGINGTON_CHANGE_WORKERS", "4")
			defer func() {
				_ = os.Unsetenv("MERGINGTON_ADDR")
				_ = os.Unsetenv("MERGINGTON_CHANGE_QUEUE_SIZE")
				_ = os.Unsetenv("MERGINGTON_CHANGE_WORKERS")
			}()

			cfg, err := config.Load(context.Background())

			convey.Convey("Then the service should be built from it", func() {
				convey.So(err, convey.ShouldBeNil)
				svc := newService(cfg, logger.Get())
				convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
				defer svc.Stop()

				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 4)
				convey.So(stats["activities"], convey.ShouldEqual, 9)
			})
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given the full route set", t, func() {
		handler := newHandler(app.New(), "mergington-activities")

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
			return w
		}

		convey.Convey("Then the root should redirect to the landing page", func() {
			w := get("/")
			convey.So(w.Code, convey.ShouldEqual, http.StatusTemporaryRedirect)
			convey.So(w.Header().Get("Location"), convey.ShouldEqual, "/static/index.html")
		})

		convey.Convey("And every surface should be reachable", func() {
			convey.So(get("/activities").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/static/index.html").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestNewHandlerContinuesCallerTrace(t *testing.T) {
	convey.Convey("Given a handler with a recording tracer provider", t, func() {
		recorder := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.TraceContext{})
		defer func() { _ = tp.Shutdown(context.Background()) }()

		svc := app.New(app.WithTracer(tp.Tracer("test")))
		handler := newHandler(svc, "mergington-activities")

		convey.Convey("When a signup arrives with a traceparent header", func() {
			const callerTrace = "4bf92f3577b34da6a3ce929d0e0e4736"
			req := httptest.NewRequest(http.MethodPost, "/activities/Chess%20Club/signup?email=traced@mergington.edu", http.NoBody)
			req.Header.Set("traceparent", "00-"+callerTrace+"-00f067aa0ba902b7-01")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			convey.Convey("Then the signup span belongs to the caller's trace", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

				var signup sdktrace.ReadOnlySpan
				var server sdktrace.ReadOnlySpan
				for _, span := range recorder.Ended() {
					switch {
					case span.Name() == "activities.signup":
						signup = span
					case span.SpanKind() == trace.SpanKindServer:
						server = span
					}
				}
				convey.So(signup, convey.ShouldNotBeNil)
				convey.So(server, convey.ShouldNotBeNil)
				convey.So(signup.SpanContext().TraceID().String(), convey.ShouldEqual, callerTrace)
				convey.So(signup.Parent().SpanID(), convey.ShouldEqual, server.SpanContext().SpanID())
				convey.So(server.Parent().IsRemote(), convey.ShouldBeTrue)
				convey.So(server.Parent().SpanID().String(), convey.ShouldEqual, "00f067aa0ba902b7")
			})
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a free local port", t, func() {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		convey.So(err, convey.ShouldBeNil)
		addr := l.Addr().String()
		convey.So(l.Close(), convey.ShouldBeNil)

		cfg := config.New()
		cfg.Addr = addr

		convey.Convey("When the server runs until its context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg, logger.Get()) }()

			var resp *http.Response
			for i := 0; i < 50; i++ {
				resp, err = http.Get("http://" + addr + "/activities")
				if err == nil {
					break
				}
				time.Sleep(20 * time.Millisecond)
			}

			convey.Convey("Then it should serve the activities and stop cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
				defer resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

				var activities types.Activities
				convey.So(json.NewDecoder(resp.Body).Decode(&activities), convey.ShouldBeNil)
				convey.So(activities, convey.ShouldContainKey, "Chess Club")

				cancel()
				var runErr error
				returned := false
				select {
				case runErr = <-done:
					returned = true
				case <-time.After(5 * time.Second):
				}
				convey.So(returned, convey.ShouldBeTrue)
				convey.So(runErr, convey.ShouldBeNil)
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metrics updaters", t, func() {
		svc := app.New()

		convey.Convey("Then they should return once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() {
				startSystemMetricsUpdater(ctx)
				startServiceMetricsUpdater(ctx, svc)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("And a single update should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
