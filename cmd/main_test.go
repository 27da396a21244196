package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/maifilter/internal/adapters/cache"
	"github.com/okian/maifilter/internal/adapters/catalog"
	"github.com/okian/maifilter/internal/adapters/source"
	app "github.com/okian/maifilter/internal/app"
	"github.com/okian/maifilter/internal/config"
	"github.com/okian/maifilter/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("MAIFILTER_ADDR", ":8080")
		t.Setenv("MAIFILTER_CACHE_BACKEND", "none")

		convey.Convey("Then configuration should be loadable", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.CacheBackend, convey.ShouldEqual, config.CacheNone)
		})
	})
}

func TestNewCache(t *testing.T) {
	convey.Convey("Given cache configurations", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)

		convey.Convey("When the memory backend is selected", func() {
			c, closeFn, err := newCache(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer closeFn()
			_, ok := c.(*cache.Memory)
			convey.So(ok, convey.ShouldBeTrue)
		})

		convey.Convey("When caching is disabled", func() {
			cfg.CacheBackend = config.CacheNone
			c, closeFn, err := newCache(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			defer closeFn()
			convey.So(c, convey.ShouldHaveSameTypeAs, cache.Noop{})
		})

		convey.Convey("When redis is unreachable", func() {
			cfg.CacheBackend = config.CacheRedis
			cfg.RedisAddr = "127.0.0.1:1"
			_, _, err := newCache(ctx, cfg)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMux(t *testing.T) {
	convey.Convey("Given a fully wired service", t, func() {
		dir := t.TempDir()
		music := filepath.Join(dir, "music_data.json")
		err := os.WriteFile(music, []byte(`[{"id": "11", "title": "海底谭", "type": "SD",
			"charts": [{"notes": [1, 1, 1, 1]}, {"notes": [1, 1, 1, 1]}, {"notes": [1, 1, 1, 1]}, {"notes": [300, 40, 60, 20]}],
			"basic_info": {"genre": "东方Project", "bpm": 180, "is_new": false}}]`), 0o600)
		convey.So(err, convey.ShouldBeNil)

		store := catalog.NewStore(catalog.WithMusicDataPath(music))
		convey.So(store.Load(context.Background()), convey.ShouldBeNil)

		prober := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"username": "alice", "nickname": "Alice", "rating": 292,
				"records": [{"song_id": 11, "level_index": 3, "ds": 13.0, "achievements": 100.5, "ra": 292, "dxScore": 1200, "title": "海底谭", "type": "SD"}]}`)
		}))
		defer prober.Close()

		svc := app.New(
			app.WithCatalog(store),
			app.WithCache(cache.NewMemory()),
			app.WithSource(source.NewClient(source.WithBaseURL(prober.URL))),
		)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(svc)

		convey.Convey("When posting a filter request", func() {
			req := httptest.NewRequest(http.MethodPost, "/filter50", strings.NewReader(`{"args": "cat=touhou qq=10001"}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			convey.Convey("Then the selection should be returned", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"rating":292`)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"avatar_qq":10001`)
			})
		})

		convey.Convey("When reading metrics", func() {
			updateSystemMetrics()
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			convey.Convey("Then the system gauges should be exposed", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "maifilter_")
			})
		})
	})
}

func TestMuxDocs(t *testing.T) {
	convey.Convey("Given the mux", t, func() {
		mux := newMux(app.New())

		convey.Convey("Then the API docs should be served", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then an unstarted service should answer 503", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/filter50", strings.NewReader(`{"qq": 1}`)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}
