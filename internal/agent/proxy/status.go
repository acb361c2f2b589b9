package proxy

import (
	"net/http"

	"github.com/okian/recall/internal/agent/cache"
	"github.com/okian/recall/internal/domain/model"
)

type statusResponse struct {
	Connectivity string            `json:"connectivity"`
	Pending      int               `json:"pending"`
	Snapshot     model.Snapshot    `json:"snapshot"`
	Versions     map[string]string `json:"cacheVersions"`
}

// handleStatus reports the agent's local view: connectivity, pending
// queue depth and the provisional snapshot maintained between
// authoritative fetches.
func (p *Proxy) handleStatus(w http.ResponseWriter, _ *http.Request) {
	state := "offline"
	if p.monitor.Online() {
		state = "online"
	}

	p.mu.Lock()
	snap := p.snapshot
	p.mu.Unlock()

	writeJSON(w, http.StatusOK, statusResponse{
		Connectivity: state,
		Pending:      p.queue.Depth(),
		Snapshot:     snap,
		Versions: map[string]string{
			string(cache.Static):  p.cache.Version(cache.Static),
			string(cache.Dynamic): p.cache.Version(cache.Dynamic),
		},
	})
}
