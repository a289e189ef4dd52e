package middleware

import "net/http"

// RequireUser защищает маршрут: без аутентифицированной сессии запрос
// обрывается конвертом с ошибкой 401. Вешается после Authenticate.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserIDFromContext(r.Context()) == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"error":"User not authenticated"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
