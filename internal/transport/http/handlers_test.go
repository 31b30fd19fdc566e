package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khkk24/projeto-how-final/internal/config"
	"github.com/khkk24/projeto-how-final/internal/operations"
	"github.com/khkk24/projeto-how-final/internal/services"
)

var fixtureHeader = strings.Join([]string{
	"uf", "br", "km", "data_inversa", "dia_semana", "horario",
	"causa_acidente", "tipo_acidente", "classificacao_acidente",
	"fase_dia", "sentido_via", "condicao_metereologica",
	"tipo_pista", "tracado_via", "pessoas", "mortos",
	"feridos_leves", "feridos_graves", "feridos", "ilesos",
	"veiculos", "latitude", "longitude",
}, ";")

func writeYearFile(t *testing.T, dir string, year, rows int) {
	t.Helper()

	var b strings.Builder
	b.WriteString(fixtureHeader + "\n")
	states := []string{"SP", "MG", "PR"}
	for i := 0; i < rows; i++ {
		severity := "Sem Vítimas"
		deaths := "0"
		switch i % 3 {
		case 0:
			severity = "Com Vítimas Fatais"
			deaths = "1"
		case 1:
			severity = "Com Vítimas Feridas"
		}
		fields := []string{
			states[i%len(states)], "116", fmt.Sprintf("%d,5", i%300),
			fmt.Sprintf("%d-06-%02d", year, i%27+1), "segunda-feira",
			fmt.Sprintf("%02d:15:00", i%24),
			"Falta de atencao", "Colisao frontal", severity,
			"Pleno dia", "Crescente", "Ceu Claro", "Simples", "Reta",
			"3", deaths, "0", "0", "0", "2", "2", "-23,5", "-46,6",
		}
		b.WriteString(strings.Join(fields, ";") + "\n")
	}
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, fmt.Sprintf("datatran%d.csv", year)),
		[]byte(b.String()), 0o644))
}

// testRouter assembles the API routes over a temp data directory, the same
// way the application does.
func testRouter(t *testing.T) chi.Router {
	t.Helper()

	base := t.TempDir()
	paths, err := config.NewPaths(base)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())

	writeYearFile(t, paths.DataDir, 2022, 90)
	writeYearFile(t, paths.DataDir, 2023, 90)

	cfg := &config.Config{}
	cfg.Paths.BaseDir = base
	cfg.Data.DefaultYears = []int{2022, 2023}
	cfg.Data.MaxUploadBytes = 10 << 20
	cfg.Model.DefaultType = "random_forest"
	cfg.Model.TestSize = 0.2
	cfg.Model.RandomSeed = 42

	manager := operations.NewManager(nil, nil)
	dataSvc := services.NewDataService(cfg, paths, nil)
	analysisSvc := services.NewAnalysisService(cfg, paths, manager, nil)
	modelSvc := services.NewModelService(cfg, paths, manager, nil)
	healthSvc := services.NewHealthService(paths, modelSvc)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", NewHealthHandler(healthSvc).Routes())
		r.Get("/version", Version)
		r.Mount("/data", NewDataHandler(dataSvc, nil).Routes())
		r.Mount("/analysis", NewAnalysisHandler(analysisSvc, nil).Routes())
		r.Mount("/model", NewModelHandler(modelSvc, nil).Routes())
	})
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status["status"])
	assert.Equal(t, true, status["data_dir_ok"])
	assert.Equal(t, false, status["model_loaded"])

	rec = doJSON(t, router, http.MethodGet, "/api/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/version", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDataYears(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/data/years", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Count int `json:"count"`
		Years []struct {
			Year int    `json:"year"`
			Name string `json:"name"`
		} `json:"years"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 2, payload.Count)
	assert.Equal(t, 2022, payload.Years[0].Year)
}

func TestDataProfile(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/data/profile?years=2022", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile struct {
		Rows   int `json:"rows"`
		Yearly []struct {
			Accidents int `json:"accidents"`
		} `json:"yearly"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, 90, profile.Rows)

	rec = doJSON(t, router, http.MethodGet, "/api/data/profile?years=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/data/profile?years=1999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDataUpload(t *testing.T) {
	router := testRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "datatran2024.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(fixtureHeader + "\nSP;116;10,0;2024-01-05;sexta-feira;07:00:00;Falta de atencao;Colisao frontal;Sem Vítimas;Pleno dia;Crescente;Ceu Claro;Simples;Reta;2;0;0;0;0;2;1;-23,5;-46,6\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/data/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "datatran2024.csv")

	// The accepted upload is now a regular extract: listed and profilable.
	rec = doJSON(t, router, http.MethodGet, "/api/data/years", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Equal(t, 3, listed.Count)

	rec = doJSON(t, router, http.MethodGet, "/api/data/profile?years=2024", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Missing file field.
	rec = doJSON(t, router, http.MethodPost, "/api/data/upload", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisRunAndExport(t *testing.T) {
	router := testRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/analysis/results", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/analysis/run", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Rows   int `json:"rows"`
		Report struct {
			TotalAccidents int `json:"total_accidents"`
		} `json:"report"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 180, result.Rows)
	assert.Equal(t, 180, result.Report.TotalAccidents)

	rec = doJSON(t, router, http.MethodGet, "/api/analysis/results", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/analysis/export?format=csv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "yearly_summary.csv")

	rec = doJSON(t, router, http.MethodGet, "/api/analysis/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "analysis_report.xlsx")

	rec = doJSON(t, router, http.MethodGet, "/api/analysis/export?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestModelEndpoints(t *testing.T) {
	router := testRouter(t)

	// No artifact yet.
	rec := doJSON(t, router, http.MethodGet, "/api/model/status", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/model/predict", map[string]any{
		"rows": []map[string]string{{"uf": "SP"}},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Invalid requests.
	rec = doJSON(t, router, http.MethodPost, "/api/model/train", map[string]any{"model_type": "svm"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/model/predict", map[string]any{"rows": []map[string]string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Train, then predict.
	rec = doJSON(t, router, http.MethodPost, "/api/model/train", map[string]any{"trees": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary struct {
		ModelType string  `json:"model_type"`
		Accuracy  float64 `json:"accuracy"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "random_forest", summary.ModelType)

	rec = doJSON(t, router, http.MethodGet, "/api/model/status", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/model/predict", map[string]any{
		"rows": []map[string]string{{
			"uf": "SP", "tipo_acidente": "Colisao frontal",
			"causa_acidente": "Falta de atencao", "tipo_pista": "Simples",
			"tracado_via": "Reta", "condicao_metereologica": "Ceu Claro",
			"fase_dia": "Pleno dia", "sentido_via": "Crescente",
			"dia_semana": "segunda-feira", "hora": "19", "mes": "6",
			"ano": "2023", "dia_semana_num": "0", "km": "120.5",
			"veiculos": "2", "pessoas": "3",
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "predictions")
}
