package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightagent/internal/domain"
	"github.com/Domenick1991/flightagent/internal/iata"
	"github.com/Domenick1991/flightagent/internal/service/search"
	"github.com/gin-gonic/gin"
)

const defaultMaxTableRows = 50

type SearchHandler struct {
	service search.SearchUseCase
}

func NewSearchHandler(service search.SearchUseCase) *SearchHandler {
	return &SearchHandler{service: service}
}

func (h *SearchHandler) Register(router *gin.Engine) {
	router.GET("/", h.form)
	router.POST("/search", h.searchForm)
	router.GET("/api/search", h.searchJSON)
	router.GET("/api/last", h.last)
	router.GET("/healthz", h.health)
}

// searchParams are the user-adjustable inputs shared by the form and JSON
// surfaces. Origin and destination accept city names or IATA codes.
type searchParams struct {
	query        domain.SearchQuery
	rank         domain.RankOptions
	maxTableRows int
}

func parseSearchParams(c *gin.Context) (searchParams, error) {
	get := func(key string) string {
		if v := c.Query(key); v != "" {
			return v
		}
		return c.PostForm(key)
	}

	origin, ok := iata.Resolve(get("origin"))
	if !ok {
		return searchParams{}, errors.New("could not determine an IATA code for the origin; enter a 3-letter code like DEL or a common city name")
	}
	destination, ok := iata.Resolve(get("destination"))
	if !ok {
		return searchParams{}, errors.New("could not determine an IATA code for the destination; enter a 3-letter code like BOM or a common city name")
	}

	date := get("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return searchParams{}, errors.New("date must be in YYYY-MM-DD format")
	}

	params := searchParams{
		query:        domain.SearchQuery{Origin: origin, Destination: destination, Date: date},
		rank:         domain.DefaultRankOptions(),
		maxTableRows: defaultMaxTableRows,
	}

	if v := get("tolerance_pct"); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil || pct < 0 {
			return searchParams{}, errors.New("tolerance_pct must be a non-negative number, e.g. 0.05")
		}
		params.rank.TolerancePct = pct
	}
	if v := get("max_picks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return searchParams{}, errors.New("max_picks must be a positive integer")
		}
		params.rank.MaxPicks = n
	}
	if v := get("max_table_rows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return searchParams{}, errors.New("max_table_rows must be a positive integer")
		}
		params.maxTableRows = n
	}

	return params, nil
}

func (h *SearchHandler) searchJSON(c *gin.Context) {
	params, err := parseSearchParams(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Search(c.Request.Context(), params.query, params.rank)
	if err != nil {
		if errors.Is(err, search.ErrNoData) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// last re-ranks the stored snapshot of the previous search, so the
// recommendation knobs can be tuned without another provider call.
func (h *SearchHandler) last(c *gin.Context) {
	opts := domain.DefaultRankOptions()
	if v := c.Query("tolerance_pct"); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil || pct < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tolerance_pct must be a non-negative number"})
			return
		}
		opts.TolerancePct = pct
	}
	if v := c.Query("max_picks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_picks must be a positive integer"})
			return
		}
		opts.MaxPicks = n
	}

	result, err := h.service.Replay(c.Request.Context(), opts)
	if err != nil {
		if errors.Is(err, search.ErrNoSnapshot) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SearchHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
