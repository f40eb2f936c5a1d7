package api

import (
	"html/template"
	"net/http"
	"time"

	"github.com/Domenick1991/flightagent/internal/domain"
	"github.com/gin-gonic/gin"
)

// The form and results pages are rendered from inline templates; the demo
// has no static asset pipeline.

var formTmpl = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head><title>Flight Agent</title></head>
<body>
	<h1>Flight Agent</h1>
	<p>Find direct flights and see varied-airline recommendations.</p>
	<form method="POST" action="/search">
		<label>Origin city or IATA: <input name="origin" value="Delhi"></label><br>
		<label>Destination city or IATA: <input name="destination" value="Hyderabad"></label><br>
		<label>Travel date: <input name="date" type="date" value="{{.DefaultDate}}"></label><br>
		<label>Near-cheapest tolerance (fraction): <input name="tolerance_pct" value="0.05"></label><br>
		<label>Max distinct-airline recommendations: <input name="max_picks" type="number" min="1" max="10" value="3"></label><br>
		<label>Max rows in table: <input name="max_table_rows" type="number" min="5" max="200" value="50"></label><br>
		<button type="submit">Search</button>
	</form>
</body>
</html>
`))

var resultsTmpl = template.Must(template.New("results").Parse(`<!DOCTYPE html>
<html>
<head><title>Flight Agent — Results</title></head>
<body>
	<h1>Flight Agent</h1>
	<p>Using IATA codes — Origin: {{.Result.Query.Origin}}, Destination: {{.Result.Query.Destination}}, Date: {{.Result.Query.Date}}</p>
	{{if not .Result.Flights}}
	<p>No direct flights found for that route/date.</p>
	{{else}}
	<h2>Recommended (varied airlines)</h2>
	<ul>
	{{range .Result.Recommended}}
		<li><b>{{.Airline}} ({{.FlightNumber}})</b> — {{.PriceRaw}} — Departs: {{.Departure}}{{if .HasLink}} — <a href="{{.Link}}">Book</a>{{else}} — No link{{end}}</li>
	{{end}}
	</ul>
	{{if .Result.Alternatives}}
	<h2>Alternatives within tolerance</h2>
	<ul>
	{{range .Result.Alternatives}}
		<li><b>{{.Airline}} ({{.FlightNumber}})</b> — {{.PriceRaw}} — Departs: {{.Departure}}{{if .HasLink}} — <a href="{{.Link}}">Book</a>{{else}} — No link{{end}}</li>
	{{end}}
	</ul>
	{{end}}
	<h2>All direct flights</h2>
	<table border="1" cellpadding="4">
		<tr><th>Airline</th><th>Flight</th><th>Departure</th><th>Arrival</th><th>Duration</th><th>Price</th><th>Link</th></tr>
	{{range .Result.Flights}}
		<tr><td>{{.Airline}}</td><td>{{.FlightNumber}}</td><td>{{.Departure}}</td><td>{{.Arrival}}</td><td>{{.Duration}}</td><td>{{.PriceRaw}}</td><td>{{if .HasLink}}<a href="{{.Link}}">Book</a>{{else}}No link{{end}}</td></tr>
	{{end}}
	</table>
	{{end}}
	<p><a href="/">New search</a></p>
</body>
</html>
`))

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><title>Flight Agent — Error</title></head>
<body>
	<h1>Flight Agent</h1>
	<p>{{.Message}}</p>
	<p><a href="/">Back to search</a></p>
</body>
</html>
`))

type flightRow struct {
	Airline      string
	FlightNumber string
	Departure    string
	Arrival      string
	Duration     string
	PriceRaw     string
	Link         string
	HasLink      bool
}

type resultView struct {
	Query        domain.SearchQuery
	Flights      []flightRow
	Recommended  []flightRow
	Alternatives []flightRow
}

func (h *SearchHandler) form(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	_ = formTmpl.Execute(c.Writer, gin.H{
		"DefaultDate": time.Now().AddDate(0, 0, 30).Format("2006-01-02"),
	})
}

func (h *SearchHandler) searchForm(c *gin.Context) {
	params, err := parseSearchParams(c)
	if err != nil {
		renderError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Search(c.Request.Context(), params.query, params.rank)
	if err != nil {
		renderError(c, http.StatusOK, "No data returned from the flight fetch. Possible causes: invalid IATA codes, an expired provider key, or no flights on that date.")
		return
	}

	view := resultView{
		Query:        result.Query,
		Flights:      toRows(capRows(result.Flights, params.maxTableRows)),
		Recommended:  toRows(result.Recommended),
		Alternatives: toRows(result.Alternatives),
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	_ = resultsTmpl.Execute(c.Writer, gin.H{"Result": view})
}

func renderError(c *gin.Context, status int, message string) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	_ = errorTmpl.Execute(c.Writer, gin.H{"Message": message})
}

func capRows(flights []domain.Flight, max int) []domain.Flight {
	if len(flights) <= max {
		return flights
	}
	return flights[:max]
}

func toRows(flights []domain.Flight) []flightRow {
	rows := make([]flightRow, 0, len(flights))
	for _, f := range flights {
		rows = append(rows, flightRow{
			Airline:      f.Airline,
			FlightNumber: f.FlightNumber,
			Departure:    f.Departure,
			Arrival:      f.Arrival,
			Duration:     f.Duration,
			PriceRaw:     f.PriceRaw,
			Link:         f.Link,
			HasLink:      len(f.Link) > 4 && f.Link[:4] == "http",
		})
	}
	return rows
}
