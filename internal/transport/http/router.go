package journalhttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"optjournal/internal/journal"
	"optjournal/internal/logger"
	"optjournal/internal/report"
	"optjournal/internal/types"
)

// JournalService 供 Service 实现，隔离 HTTP 层与核心逻辑。
type JournalService interface {
	Positions(ctx context.Context) ([]types.Position, error)
	LogTrade(ctx context.Context, in types.TradeInstruction) ([]types.Position, error)
	SaveRecord(ctx context.Context, pos types.Position) (types.Position, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, prices map[string]float64) (journal.Summary, error)
	PerformanceMetrics(ctx context.Context) (journal.Metrics, error)
}

// Router 暴露交易日志相关接口。
type Router struct {
	Journal JournalService
}

// NewRouter 构造 journal HTTP router。
func NewRouter(svc JournalService) *Router {
	return &Router{Journal: svc}
}

// Register 将 /api 路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/trades", r.handleListTrades)
	group.POST("/trades", r.handleSaveTrade)
	group.POST("/trades/log", r.handleLogTrade)
	group.DELETE("/trades/:id", r.handleDeleteTrade)
	group.GET("/trades/summary", r.handleSummary)
	group.GET("/trades/metrics", r.handleMetrics)
	group.GET("/charts/profit", r.handleProfitChart)
	group.GET("/charts/profit.png", r.handleProfitChartPNG)
}

func (r *Router) handleListTrades(c *gin.Context) {
	positions, err := r.Journal.Positions(c.Request.Context())
	if err != nil {
		logger.Errorf("[api] list trades failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if positions == nil {
		positions = []types.Position{}
	}
	c.JSON(http.StatusOK, positions)
}

func (r *Router) handleLogTrade(c *gin.Context) {
	var in types.TradeInstruction
	if err := c.ShouldBindJSON(&in); err != nil {
		logger.Errorf("[api] trade log bind failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	positions, err := r.Journal.LogTrade(c.Request.Context(), in)
	if err != nil {
		var verr *types.ValidationError
		if errors.As(err, &verr) {
			logger.Warnf("[api] trade log rejected ip=%s fields=%d", c.ClientIP(), len(verr.Fields))
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trade instruction", "fields": verr.Fields})
			return
		}
		logger.Errorf("[api] trade log failed ip=%s ticker=%s err=%v", c.ClientIP(), strings.ToUpper(strings.TrimSpace(in.Ticker)), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logger.Infof("[api] trade log ip=%s action=%s ticker=%s qty=%d", c.ClientIP(), in.Action, strings.ToUpper(strings.TrimSpace(in.Ticker)), in.Quantity)
	c.JSON(http.StatusOK, gin.H{"trades": positions})
}

func (r *Router) handleSaveTrade(c *gin.Context) {
	var pos types.Position
	if err := c.ShouldBindJSON(&pos); err != nil {
		logger.Errorf("[api] trade save bind failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := r.Journal.SaveRecord(c.Request.Context(), pos)
	if err != nil {
		logger.Errorf("[api] trade save failed ip=%s id=%s err=%v", c.ClientIP(), pos.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trade": saved})
}

func (r *Router) handleDeleteTrade(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trade id"})
		return
	}
	if err := r.Journal.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "trade not found"})
			return
		}
		logger.Errorf("[api] trade delete failed ip=%s id=%s err=%v", c.ClientIP(), id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	logger.Infof("[api] trade delete ip=%s id=%s", c.ClientIP(), id)
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func (r *Router) handleSummary(c *gin.Context) {
	prices := parsePriceQuotes(c.QueryArray("price"))
	summary, err := r.Journal.Summary(c.Request.Context(), prices)
	if err != nil {
		logger.Errorf("[api] summary failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (r *Router) handleMetrics(c *gin.Context) {
	metrics, err := r.Journal.PerformanceMetrics(c.Request.Context())
	if err != nil {
		logger.Errorf("[api] metrics failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (r *Router) handleProfitChart(c *gin.Context) {
	positions, err := r.Journal.Positions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	page, err := report.BuildProfitPage(positions)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := page.Render(c.Writer); err != nil {
		logger.Warnf("[api] profit chart render failed ip=%s err=%v", c.ClientIP(), err)
	}
}

func (r *Router) handleProfitChartPNG(c *gin.Context) {
	positions, err := r.Journal.Positions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	png, err := report.RenderProfitPNG(c.Request.Context(), positions)
	if err != nil {
		logger.Warnf("[api] profit chart png failed ip=%s err=%v", c.ClientIP(), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// parsePriceQuotes 解析 ?price=SYM:1.23 形式的现价参数。
func parsePriceQuotes(raw []string) map[string]float64 {
	if len(raw) == 0 {
		return nil
	}
	prices := make(map[string]float64, len(raw))
	for _, item := range raw {
		parts := strings.SplitN(strings.TrimSpace(item), ":", 2)
		if len(parts) != 2 {
			continue
		}
		sym := strings.ToUpper(strings.TrimSpace(parts[0]))
		val, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil || sym == "" {
			continue
		}
		prices[sym] = val
	}
	if len(prices) == 0 {
		return nil
	}
	return prices
}
