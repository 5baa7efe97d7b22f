package server

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hupe1980/pinelocal/distance"
	"github.com/hupe1980/pinelocal/model"
)

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// createIndexBody accepts a fractional dimension so that it is reported as an
// invalid dimension rather than an unreadable body.
type createIndexBody struct {
	Name      string     `json:"name"`
	Dimension float64    `json:"dimension"`
	Metric    string     `json:"metric"`
	Spec      model.Spec `json:"spec"`
}

func (b createIndexBody) request() model.CreateIndexRequest {
	dim := 0
	if b.Dimension == math.Trunc(b.Dimension) && b.Dimension <= math.MaxInt32 {
		dim = int(b.Dimension)
	}
	return model.CreateIndexRequest{
		Name:      b.Name,
		Dimension: dim,
		Metric:    distance.Metric(b.Metric),
		Spec:      b.Spec,
	}
}

func (s *Server) createIndex(c *gin.Context) {
	var body createIndexBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	desc, err := s.backend.CreateIndex(c.Request.Context(), body.request())
	if err != nil {
		s.fail(c, opIndex, err)
		return
	}
	c.JSON(http.StatusCreated, desc)
}

func (s *Server) listIndexes(c *gin.Context) {
	entries, err := s.backend.ListIndexes(c.Request.Context())
	if err != nil {
		s.fail(c, opIndex, err)
		return
	}
	if entries == nil {
		entries = []model.IndexDescription{}
	}
	c.JSON(http.StatusOK, model.ListIndexesResponse{Indexes: entries})
}

func (s *Server) describeIndex(c *gin.Context) {
	desc, err := s.backend.DescribeIndex(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, opIndex, err)
		return
	}
	c.JSON(http.StatusOK, desc)
}

func (s *Server) describeIndexStats(c *gin.Context) {
	stats, err := s.backend.DescribeIndexStats(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.fail(c, opIndex, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) deleteIndex(c *gin.Context) {
	if err := s.backend.DeleteIndex(c.Request.Context(), c.Param("name")); err != nil {
		s.fail(c, opIndex, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Index deleted successfully"})
}

func (s *Server) upsert(c *gin.Context) {
	var body model.UpsertRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	n, err := s.backend.Upsert(c.Request.Context(), c.Param("name"), body.Vectors)
	if err != nil {
		s.fail(c, opUpsert, err)
		return
	}
	c.JSON(http.StatusOK, model.UpsertResponse{UpsertedCount: n})
}

// queryBody accepts a fractional topK so that it is reported as an invalid
// topK rather than an unreadable body.
type queryBody struct {
	Vector          []float64 `json:"vector"`
	TopK            float64   `json:"topK"`
	Namespace       string    `json:"namespace"`
	IncludeValues   bool      `json:"includeValues"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

func (b queryBody) request() model.QueryRequest {
	k := 0
	if b.TopK == math.Trunc(b.TopK) && b.TopK <= math.MaxInt32 {
		k = int(b.TopK)
	}
	return model.QueryRequest{
		Vector:          b.Vector,
		TopK:            k,
		Namespace:       b.Namespace,
		IncludeValues:   b.IncludeValues,
		IncludeMetadata: b.IncludeMetadata,
	}
}

func (s *Server) query(c *gin.Context) {
	var body queryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	resp, err := s.backend.Query(c.Request.Context(), c.Param("name"), body.request())
	if err != nil {
		s.fail(c, opQuery, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
