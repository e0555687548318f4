package http

import (
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

type dashboardPage struct {
	layout
	Categories  []amountRow
	Groups      []groupRow
	TotalAssets decimal.Decimal
	Liabilities []amountRow
	CreditScore int
	ChatFields  []string
}

type groupRow struct {
	Name     string
	Subtotal decimal.Decimal
	Items    []amountRow
}

type transactionsPage struct {
	layout
	Columns []string
	Rows    [][]string
}

type portfolioPage struct {
	layout
	Investments []amountRow
	Total       decimal.Decimal
}

type epfCreditPage struct {
	layout
	EPFBalance  decimal.Decimal
	CreditScore int
}

type assetsLiabilitiesPage struct {
	layout
	Categories       []amountRow
	Groups           []groupRow
	TotalAssets      decimal.Decimal
	Liabilities      []amountRow
	TotalLiabilities decimal.Decimal
}

func groupRows(a core.Assets) []groupRow {
	names := make([]string, 0, len(a.Groups))
	for name := range a.Groups {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([]groupRow, 0, len(a.Groups))
	for _, name := range names {
		g := a.Groups[name]
		rows = append(rows, groupRow{Name: name, Subtotal: g.Total(), Items: amountRows(g)})
	}
	return rows
}

// handleDashboard renders the main dashboard page
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	rec, err := s.loader.Load(r.Context())
	if err != nil {
		s.recordUnavailable(w, r, err)
		return
	}

	sess := s.sessions.Load(r)
	data := &dashboardPage{
		layout:      layout{Title: "Dashboard", Active: "dashboard"},
		Categories:  amountRows(rec.Assets.Categories),
		Groups:      groupRows(rec.Assets),
		TotalAssets: rec.Assets.Total(),
		Liabilities: amountRows(rec.Liabilities),
		CreditScore: rec.CreditScore,
		ChatFields:  rec.Fields(),
	}
	s.render(w, r, sess, http.StatusOK, "dashboard.html", data, &data.layout)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	rec, err := s.loader.Load(r.Context())
	if err != nil {
		s.recordUnavailable(w, r, err)
		return
	}

	cols := core.TransactionColumns(rec.Transactions)
	rows := make([][]string, 0, len(rec.Transactions))
	for _, tx := range rec.Transactions {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = tx.Cell(c)
		}
		rows = append(rows, row)
	}

	data := &transactionsPage{
		layout:  layout{Title: "Transactions", Active: "transactions"},
		Columns: cols,
		Rows:    rows,
	}
	s.render(w, r, s.sessions.Load(r), http.StatusOK, "transactions.html", data, &data.layout)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	rec, err := s.loader.Load(r.Context())
	if err != nil {
		s.recordUnavailable(w, r, err)
		return
	}

	inv := rec.Assets.Investments()
	data := &portfolioPage{
		layout:      layout{Title: "Portfolio", Active: "portfolio"},
		Investments: amountRows(inv),
		Total:       inv.Total(),
	}
	s.render(w, r, s.sessions.Load(r), http.StatusOK, "portfolio.html", data, &data.layout)
}

func (s *Server) handleEPFCredit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	rec, err := s.loader.Load(r.Context())
	if err != nil {
		s.recordUnavailable(w, r, err)
		return
	}

	data := &epfCreditPage{
		layout:      layout{Title: "EPF & Credit", Active: "epf_credit"},
		EPFBalance:  rec.EPFBalance,
		CreditScore: rec.CreditScore,
	}
	s.render(w, r, s.sessions.Load(r), http.StatusOK, "epf_credit.html", data, &data.layout)
}

func (s *Server) handleAssetsLiabilities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	rec, err := s.loader.Load(r.Context())
	if err != nil {
		s.recordUnavailable(w, r, err)
		return
	}

	data := &assetsLiabilitiesPage{
		layout:           layout{Title: "Assets & Liabilities", Active: "assets_liabilities"},
		Categories:       amountRows(rec.Assets.Categories),
		Groups:           groupRows(rec.Assets),
		TotalAssets:      rec.Assets.Total(),
		Liabilities:      amountRows(rec.Liabilities),
		TotalLiabilities: rec.Liabilities.Total(),
	}
	s.render(w, r, s.sessions.Load(r), http.StatusOK, "assets_liabilities.html", data, &data.layout)
}
