package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v3"
	"github.com/pyama86/device-query/config"
	"github.com/pyama86/device-query/domain/infra"
	"github.com/pyama86/device-query/domain/model"
)

const (
	adminTokenHeader = "x-admin-token"

	storeTimeout  = 5 * time.Second
	notifyTimeout = 10 * time.Second
	listCacheTTL  = 5 * time.Second
)

const (
	msgInvalidPayload = "Invalid payload"
	msgSaveFailed     = "Failed to save query"
	msgReadFailed     = "Failed to read queries"
	msgUnauthorized   = "Unauthorized"
	msgNotFound       = "Not found"
)

type Handler struct {
	ds          infra.Datastore
	notifier    infra.Notifier
	adminToken  string
	corsOrigins []string
	staticDir   string
	metrics     *metrics

	// 一覧のキャッシュ。limit ごとに持ち、保存があれば捨てる
	listCache *ttlcache.Cache[int, []model.Query]
	cacheMu   sync.Mutex
	cacheGen  uint64

	notifyWG sync.WaitGroup
}

// NewHandler builds the Query API. notifier may be nil.
func NewHandler(cfg *config.Config, ds infra.Datastore, notifier infra.Notifier) *Handler {
	h := &Handler{
		ds:          ds,
		notifier:    notifier,
		adminToken:  cfg.AdminToken,
		corsOrigins: cfg.CORSOrigins,
		staticDir:   cfg.StaticDir,
		metrics:     newMetrics(),
		listCache: ttlcache.New(
			ttlcache.WithTTL[int, []model.Query](listCacheTTL),
			ttlcache.WithDisableTouchOnHit[int, []model.Query](),
		),
	}
	go h.listCache.Start()
	return h
}

// Close waits for in-flight notifications and stops the cache janitor.
func (h *Handler) Close() {
	h.notifyWG.Wait()
	h.listCache.Stop()
}

type createQueryResponse struct {
	ID        uint   `json:"id"`
	CreatedAt string `json:"created_at"`
}

type listQueriesResponse struct {
	Items []model.Query `json:"items"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) CreateQuery(c *gin.Context) {
	var in model.Submission
	if err := c.ShouldBindJSON(&in); err != nil {
		h.metrics.submissions.WithLabelValues(resultInvalid).Inc()
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidPayload})
		return
	}
	sub, err := model.Validate(in)
	if err != nil {
		h.metrics.submissions.WithLabelValues(resultInvalid).Inc()
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidPayload})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	q := model.NewQuery(sub)
	if err := h.ds.InsertQuery(ctx, q); err != nil {
		slog.Error("InsertQuery failed", slog.Any("err", err), slog.String("request_id", c.GetString(requestIDKey)))
		h.metrics.submissions.WithLabelValues(resultError).Inc()
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgSaveFailed})
		return
	}
	h.invalidateList()
	h.metrics.submissions.WithLabelValues(resultCreated).Inc()
	h.notify(*q)

	c.JSON(http.StatusCreated, createQueryResponse{ID: q.ID, CreatedAt: q.CreatedAt})
}

func (h *Handler) ListQueries(c *gin.Context) {
	if !h.authorized(c.GetHeader(adminTokenHeader)) {
		h.metrics.adminList.WithLabelValues(resultUnauthorized).Inc()
		c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
		return
	}
	limit := parseLimit(c.Query("limit"))

	if item := h.listCache.Get(limit); item != nil {
		h.metrics.adminList.WithLabelValues(resultOK).Inc()
		c.JSON(http.StatusOK, listQueriesResponse{Items: item.Value()})
		return
	}

	h.cacheMu.Lock()
	gen := h.cacheGen
	h.cacheMu.Unlock()

	ctx, cancel := context.WithTimeout(c.Request.Context(), storeTimeout)
	defer cancel()

	items, err := h.ds.ListQueries(ctx, limit)
	if err != nil {
		slog.Error("ListQueries failed", slog.Any("err", err), slog.String("request_id", c.GetString(requestIDKey)))
		h.metrics.adminList.WithLabelValues(resultError).Inc()
		c.JSON(http.StatusInternalServerError, errorResponse{Error: msgReadFailed})
		return
	}
	if items == nil {
		items = []model.Query{}
	}

	// 読んでいる間に保存があったらキャッシュしない
	h.cacheMu.Lock()
	if gen == h.cacheGen {
		h.listCache.Set(limit, items, ttlcache.DefaultTTL)
	}
	h.cacheMu.Unlock()

	h.metrics.adminList.WithLabelValues(resultOK).Inc()
	c.JSON(http.StatusOK, listQueriesResponse{Items: items})
}

func (h *Handler) authorized(token string) bool {
	if h.adminToken == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) == 1
}

func (h *Handler) invalidateList() {
	h.cacheMu.Lock()
	defer h.cacheMu.Unlock()
	h.cacheGen++
	h.listCache.DeleteAll()
}

// notify posts to Slack in the background. A failed notification never fails the submission.
func (h *Handler) notify(q model.Query) {
	if h.notifier == nil {
		return
	}
	h.notifyWG.Add(1)
	go func() {
		defer h.notifyWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := h.notifier.NotifyQuery(ctx, &q); err != nil {
			slog.Error("NotifyQuery failed", slog.Any("err", err), slog.Uint64("id", uint64(q.ID)))
		}
	}()
}

// parseLimit は数値でなければ既定値、数値なら [1, 500] に丸める
func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return infra.DefaultListLimit
	}
	// 桁あふれのときも n は ±MaxInt なので丸めればよい
	return infra.ClampLimit(n)
}
