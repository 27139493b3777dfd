package postgres

import "time"

// optTime превращает нулевое время в NULL для COALESCE на стороне базы
func optTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
