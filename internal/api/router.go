package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/paca/jungsi/backend/internal/api/handlers"
	"github.com/paca/jungsi/backend/pkg/config"
	"github.com/paca/jungsi/backend/pkg/logger"
)

// NewRouter wires every endpoint of the 점수 계산 API.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(
	cfg *config.Config,
	calc *handlers.CalculateHandler,
	catalog *handlers.CatalogHandler,
	changes *handlers.ChangeLogHandler,
	log *logger.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// 계산 엔드포인트는 무거워서 별도 속도 제한을 건다
	calcRoutes := api.PathPrefix("/calculate").Subrouter()
	calcRoutes.Use(rateLimitMiddleware(cfg, log))
	calcRoutes.HandleFunc("/suneung", calc.CalculateSuneung).Methods("POST")
	calcRoutes.HandleFunc("/practical", calc.CalculatePractical).Methods("POST")

	api.HandleFunc("/formulas/validate", calc.ValidateFormula).Methods("POST")
	api.HandleFunc("/formulas/{deptId}", calc.GetFormula).Methods("GET")

	api.HandleFunc("/universities", catalog.ListUniversities).Methods("GET")
	api.HandleFunc("/departments", catalog.ListDepartments).Methods("GET")
	api.HandleFunc("/departments/{deptId}", catalog.GetDepartment).Methods("GET")
	api.HandleFunc("/years", catalog.ListYears).Methods("GET")
	api.HandleFunc("/students", catalog.ListStudents).Methods("GET")
	api.HandleFunc("/students/{studentId}/scores", catalog.GetStudentScores).Methods("GET")

	api.HandleFunc("/change-logs", changes.List).Methods("GET")
	api.HandleFunc("/change-logs", changes.Append).Methods("POST")

	// 변경 이력 실시간 구독
	r.HandleFunc("/ws/change-logs", changes.Subscribe)

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "jungsi-api",
	})
}

// rateLimitMiddleware throttles the calculation endpoints with a
// shared token bucket.
func rateLimitMiddleware(cfg *config.Config, log *logger.Logger) mux.MiddlewareFunc {
	limiter := rate.NewLimiter(rate.Limit(cfg.Engine.RateLimit), cfg.Engine.RateBurst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.WithField("path", r.URL.Path).Warn("계산 요청 속도 제한")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "요청이 너무 많습니다. 잠시 후 다시 시도하세요.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
