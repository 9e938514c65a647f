package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/radieske/coinflip-platform/internal/ledger"
	"github.com/radieske/coinflip-platform/internal/match"
)

// MatchReader é a leitura de partidas usada pela API
type MatchReader interface {
	Get(matchID string) (match.Match, error)
}

// BalanceReader é a leitura de saldos usada pela API
type BalanceReader interface {
	Get(identity string) (int64, error)
}

// API expõe a página inicial, o endpoint WebSocket e consultas somente-leitura
type API struct {
	Matches   MatchReader
	Balances  BalanceReader
	WS        http.Handler // upgrade para WebSocket
	StaticDir string       // opcional: game.html e assets
}

type BalanceResponse struct {
	Identity string `json:"identity"`
	Balance  int64  `json:"balance"`
}

const landingPage = `<h1>Coinflip prototype is running</h1>
<p><a href="/game.html">Open the game page</a></p>
`

// Router retorna o roteador HTTP com CORS liberado (o cliente roda no browser)
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", a.landing)
	r.Handle("/ws", a.WS)
	r.Get("/v1/matches/{id}", a.getMatch)
	r.Get("/v1/balances/{identity}", a.getBalance)
	if a.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(a.StaticDir)))
	}

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}).Handler(r)
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) landing(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(landingPage))
}

func (a *API) getMatch(w http.ResponseWriter, r *http.Request) {
	m, err := a.Matches.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, match.ErrMatchNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) getBalance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "identity")
	bal, err := a.Balances.Get(id)
	if err != nil {
		if errors.Is(err, ledger.ErrUnknownIdentity) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{Identity: id, Balance: bal})
}
