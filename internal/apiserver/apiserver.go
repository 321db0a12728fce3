// Package apiserver wires the engine's HTTP and websocket surface
// (spec.md §6.4) into a single *http.Server, reused by both cmd/server and
// the cmd/cli "serve" subcommand.
package apiserver

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chromabeam/engine/internal/cache"
	"github.com/chromabeam/engine/internal/database"
	apierrors "github.com/chromabeam/engine/internal/errors"
	"github.com/chromabeam/engine/internal/fingerprint"
	"github.com/chromabeam/engine/internal/logger"
	"github.com/chromabeam/engine/internal/metrics"
	"github.com/chromabeam/engine/internal/middleware"
	"github.com/chromabeam/engine/internal/registry"
	"github.com/chromabeam/engine/internal/search"
	"github.com/chromabeam/engine/internal/session"
)

// Deps bundles everything the router's handlers close over.
type Deps struct {
	Session      *session.Session
	KeyRegistry  *registry.Registry
	RedisClient  *cache.RedisClient // nil disables the extraction cache
	ExtractorCfg fingerprint.ExtractorConfig
	Addr         string
	TracingOn    bool
}

// New builds the gin router and returns an *http.Server ready to
// ListenAndServe. The caller owns startup logging and graceful shutdown.
func New(d Deps) *http.Server {
	metrics.Initialize()

	r := gin.New()

	corsConfig := cors.DefaultConfig()
	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.FieldsFunc(allowedOrigins, func(r rune) bool { return r == ',' })
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Requested-With", "Accept"}
	corsConfig.MaxAge = 86400
	r.Use(cors.New(corsConfig))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.CorrelationMiddleware())
	if d.TracingOn {
		r.Use(middleware.TracingMiddleware("chromabeam-engine"))
		r.Use(middleware.SpanEnrichmentMiddleware())
	}
	r.Use(gin.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/v1/query/ws", "/metrics"})))

	r.GET("/healthz", func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		if err := database.Health(); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "service": "chromabeam-engine", "timestamp": time.Now().UTC()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimit())
	{
		keys := v1.Group("/keys")
		{
			keys.POST("/:id",
				middleware.RateLimitSmartUpload(),
				middleware.CacheInvalidationMiddleware("response:*"),
				func(c *gin.Context) { handleRegisterKey(c, d) })
			keys.GET("", middleware.ResponseCacheMiddleware(30*time.Second), func(c *gin.Context) { handleListKeys(c, d) })
		}

		query := v1.Group("/query")
		query.Use(middleware.RateLimitSmartSearch())
		{
			query.GET("/ws", func(c *gin.Context) { handleQueryWebSocket(c, d) })
		}
	}

	addr := d.Addr
	if addr == "" {
		addr = ":8787"
	}
	return &http.Server{Addr: addr, Handler: r}
}

// handleRegisterKey registers a key from raw 16-bit LE PCM in the request
// body. An extraction cache (internal/cache, keyed by a SHA-256 of the PCM
// bytes) skips re-running the STFT/quantizer pipeline for identical audio.
func handleRegisterKey(c *gin.Context, d Deps) {
	id, err := session.ParseKeyID(c.Param("id"))
	if err != nil {
		resp := apierrors.FromCore(err)
		c.JSON(resp.Status, resp)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		resp := apierrors.BadRequest("failed to read request body")
		c.JSON(resp.Status, resp)
		return
	}

	start := time.Now()
	samples := decodePCM16LE(body)

	var seq []fingerprint.Fingerprint
	cacheKey := ""
	if d.RedisClient != nil {
		sum := sha256.Sum256(body)
		cacheKey = "extract:" + hex.EncodeToString(sum[:])
		if cached, err := d.RedisClient.Get(c.Request.Context(), cacheKey); err == nil {
			if decoded, decErr := decodeFingerprintSeq(cached); decErr == nil {
				seq = decoded
			}
		}
	}

	if seq == nil {
		seq = d.Session.Extract(samples)
		if d.RedisClient != nil && cacheKey != "" {
			if encoded, encErr := encodeFingerprintSeq(seq); encErr == nil {
				_ = d.RedisClient.SetEx(c.Request.Context(), cacheKey, encoded, time.Hour)
			}
		}
	}

	d.Session.RegisterSequence(id, seq)
	middleware.RecordExtraction("register", time.Since(start), len(seq))

	rec := registry.KeyRecord{
		ID:               id,
		Name:             c.Query("name"),
		Artist:           c.Query("artist"),
		SourceFilename:   c.Query("filename"),
		DurationSeconds:  float64(len(samples)) / float64(d.ExtractorCfg.SampleRate),
		FingerprintCount: len(seq),
		CreatedAt:        time.Now().UTC(),
	}
	if err := d.KeyRegistry.Upsert(rec); err != nil {
		logger.Log.Warn("Failed to persist key metadata", zap.Error(err))
	}

	if d.RedisClient != nil {
		cm := middleware.NewCacheManager(d.RedisClient)
		_ = cm.InvalidateKeyCache(c.Request.Context(), id.String())
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                id,
		"fingerprint_count": len(seq),
	})
}

func handleListKeys(c *gin.Context, d Deps) {
	recs, err := d.KeyRegistry.List()
	if err != nil {
		resp := apierrors.InternalError("failed to list keys")
		c.JSON(resp.Status, resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{"keys": recs})
}

// leaderboardMessage is the JSON frame sent to a websocket client after
// each PCM message that produced new analysis windows: a snapshot of the
// current ranked results.
type leaderboardMessage struct {
	Final   bool            `json:"final"`
	Results []search.Result `json:"results"`
}

// handleQueryWebSocket streams raw 16-bit LE PCM frames from the client and
// replies with one incremental leaderboard after each message that produced
// at least one new fingerprint. Non-binary messages are ignored. The connection's lifetime is exactly one search.Query's
// lifetime: opened on connect, Finalize()d on close.
func handleQueryWebSocket(c *gin.Context, d Deps) {
	conn, err := websocket.Accept(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("Failed to accept websocket connection", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := c.Request.Context()
	extractor, err := fingerprint.NewExtractor(d.ExtractorCfg)
	if err != nil {
		conn.Close(websocket.StatusInternalError, "bad extractor configuration")
		return
	}

	q := d.Session.NewQuery()
	var pcmBuffer []int16
	produced := 0

	for {
		msgType, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		if msgType != websocket.MessageBinary {
			continue
		}

		pcmBuffer = append(pcmBuffer, decodePCM16LE(data)...)

		updateStart := time.Now()
		seq := extractor.Features(pcmBuffer)
		if len(seq) > produced {
			for _, fp := range seq[produced:] {
				q.Update(fp)
			}
			produced = len(seq)
			middleware.RecordQueryUpdate(time.Since(updateStart))

			payload, _ := json.Marshal(leaderboardMessage{Results: q.Peek(20)})
			if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
				break
			}
		}
	}

	results := q.Finalize()
	middleware.RecordResultsReturned(len(results))
	payload, _ := json.Marshal(leaderboardMessage{Final: true, Results: results})
	_ = conn.Write(ctx, websocket.MessageText, payload)
	conn.Close(websocket.StatusNormalClosure, "query finalized")
}

func decodePCM16LE(data []byte) []int16 {
	n := len(data) / 2
	samples := make([]int16, n)
	for i := 0; i < n; i++ {
		samples[i] = int16(uint16(data[2*i]) | uint16(data[2*i+1])<<8)
	}
	return samples
}

func encodeFingerprintSeq(seq []fingerprint.Fingerprint) (string, error) {
	raw := make([]uint64, len(seq))
	for i, fp := range seq {
		raw[i] = uint64(fp)
	}
	b, err := json.Marshal(raw)
	return string(b), err
}

func decodeFingerprintSeq(s string) ([]fingerprint.Fingerprint, error) {
	var raw []uint64
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	seq := make([]fingerprint.Fingerprint, len(raw))
	for i, v := range raw {
		seq[i] = fingerprint.Fingerprint(v)
	}
	return seq, nil
}
