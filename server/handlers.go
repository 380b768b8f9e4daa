package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/snowgen/clog"
	"github.com/ceyewan/snowgen/idgen"
	"github.com/ceyewan/snowgen/xerrors"
)

// idResponse 单个 ID 的响应
type idResponse struct {
	ID           int64 `json:"id"`
	WorkerID     int64 `json:"worker_id"`
	DatacenterID int64 `json:"datacenter_id"`
	Timestamp    int64 `json:"timestamp"`
}

// batchResponse 批量 ID 的响应
type batchResponse struct {
	IDs          []int64 `json:"ids"`
	Count        int     `json:"count"`
	WorkerID     int64   `json:"worker_id"`
	DatacenterID int64   `json:"datacenter_id"`
}

// parseResponse ID 解析结果的响应
type parseResponse struct {
	ID                 int64  `json:"id"`
	IDHex              string `json:"id_hex"`
	Timestamp          int64  `json:"timestamp"`
	TimestampFormatted string `json:"timestamp_formatted"`
	DatacenterID       int64  `json:"datacenter_id"`
	WorkerID           int64  `json:"worker_id"`
	Sequence           int64  `json:"sequence"`
}

// statsResponse 服务统计响应
type statsResponse struct {
	TotalRequests         int64   `json:"total_requests"`
	SuccessfulGenerations int64   `json:"successful_generations"`
	FailedGenerations     int64   `json:"failed_generations"`
	SuccessRate           float64 `json:"success_rate"`
	UptimeSeconds         int64   `json:"uptime_seconds"`
	RequestsPerSecond     float64 `json:"requests_per_second"`

	Generator idgen.Stats `json:"generator"`
}

// errorResponse 错误响应
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleGenerate(c *gin.Context) {
	s.requests.Add(1)

	id, err := s.gen.NextID()
	if err != nil {
		s.failed.Add(1)
		s.logger.Warn("failed to generate id", clog.Error(err))
		c.JSON(statusOf(err), errorResponse{Error: err.Error(), Code: xerrors.GetCode(err)})
		return
	}
	s.succeeded.Add(1)

	identity := s.gen.Identity()
	c.JSON(http.StatusOK, idResponse{
		ID:           id,
		WorkerID:     identity.WorkerID,
		DatacenterID: identity.DatacenterID,
		Timestamp:    idgen.Decode(id).Timestamp,
	})
}

func (s *Server) handleBatch(c *gin.Context) {
	s.requests.Add(1)

	count := 10
	if raw := c.Query("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "count must be an integer"})
			return
		}
		count = parsed
	}
	if count < 1 || count > s.cfg.BatchLimit {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: "count out of range",
			Code:  "count_out_of_range",
		})
		return
	}

	ids, err := s.gen.NextBatch(count)
	if err != nil {
		s.failed.Add(1)
		s.logger.Warn("failed to generate batch", clog.Error(err), clog.Int("count", count))
		c.JSON(statusOf(err), errorResponse{Error: err.Error(), Code: xerrors.GetCode(err)})
		return
	}
	s.succeeded.Add(int64(len(ids)))

	identity := s.gen.Identity()
	c.JSON(http.StatusOK, batchResponse{
		IDs:          ids,
		Count:        len(ids),
		WorkerID:     identity.WorkerID,
		DatacenterID: identity.DatacenterID,
	})
}

func (s *Server) handleParse(c *gin.Context) {
	s.requests.Add(1)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "id must be a 64-bit integer"})
		return
	}

	parsed := idgen.Decode(id)
	c.JSON(http.StatusOK, parseResponse{
		ID:                 parsed.ID,
		IDHex:              parsed.Hex(),
		Timestamp:          parsed.Timestamp,
		TimestampFormatted: parsed.Time().UTC().Format(time.RFC3339Nano),
		DatacenterID:       parsed.DatacenterID,
		WorkerID:           parsed.WorkerID,
		Sequence:           parsed.Sequence,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	total := s.requests.Load()
	succeeded := s.succeeded.Load()
	failed := s.failed.Load()
	uptime := int64(time.Since(s.startTime).Seconds())

	successRate := 0.0
	if succeeded+failed > 0 {
		successRate = float64(succeeded) / float64(succeeded+failed) * 100.0
	}
	rps := 0.0
	if uptime > 0 {
		rps = float64(total) / float64(uptime)
	}

	c.JSON(http.StatusOK, statsResponse{
		TotalRequests:         total,
		SuccessfulGenerations: succeeded,
		FailedGenerations:     failed,
		SuccessRate:           successRate,
		UptimeSeconds:         uptime,
		RequestsPerSecond:     rps,
		Generator:             s.gen.Stats(),
	})
}

// statusOf 将生成错误映射为 HTTP 状态码（内部使用）
func statusOf(err error) int {
	switch {
	case xerrors.Is(err, idgen.ErrInvalidInput):
		return http.StatusBadRequest
	case xerrors.Is(err, idgen.ErrClockBackwards), xerrors.Is(err, idgen.ErrClockDriftTooLarge):
		// 时钟问题是暂时的，提示调用方稍后重试
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
