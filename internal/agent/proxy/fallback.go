package proxy

import (
	"net/http"

	"github.com/okian/recall/internal/domain/model"
	"github.com/okian/recall/pkg/metrics"
)

// serveSynthetic answers known read endpoints with a minimal payload
// when neither the network nor the cache can. It returns false when the
// path has no synthetic form.
func (p *Proxy) serveSynthetic(w http.ResponseWriter, path string) bool {
	switch path {
	case statsPath:
		metrics.RecordSyntheticFallback()
		writeJSON(w, http.StatusOK, model.Snapshot{})
		return true
	case "/api/words":
		metrics.RecordSyntheticFallback()
		writeJSON(w, http.StatusOK, []map[string]string{
			{
				"id":          "offline-placeholder",
				"word":        "offline",
				"translation": "the network will be back",
			},
		})
		return true
	default:
		return false
	}
}
