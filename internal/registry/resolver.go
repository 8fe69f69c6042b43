// Package registry resolves event locations to display names: the
// owning server's name and, for camera-scoped events, the camera name
// reported by that server's inventory.
package registry

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/technosupport/ts-dvr-gateway/internal/data"
	"github.com/technosupport/ts-dvr-gateway/internal/dvr"
)

type ServerStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*data.Server, error)
}

type CameraLister interface {
	ListCameras(ctx context.Context, server *data.Server) ([]dvr.Camera, error)
}

// ClientLister lists cameras over the server's own HTTP API.
type ClientLister struct{}

func (ClientLister) ListCameras(ctx context.Context, server *data.Server) ([]dvr.Camera, error) {
	client := dvr.NewClient(server.BaseURL, dvr.Credentials{Username: server.Username, Password: server.Password})
	return client.ListCameras(ctx)
}

type cacheEntry struct {
	name       string
	unmapped   bool
	expiryTime time.Time
}

type Resolver struct {
	servers ServerStore
	cameras CameraLister
	ttl     time.Duration

	// key "server:camera" -> cacheEntry; "server" -> server name entry
	cache sync.Map
}

func NewResolver(servers ServerStore, cameras CameraLister, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Resolver{servers: servers, cameras: cameras, ttl: ttl}
}

// ServerName returns the display name of a server, or "" when the
// server is unknown. Best effort: a lookup failure never blocks ingest.
func (r *Resolver) ServerName(ctx context.Context, serverID uuid.UUID) string {
	key := serverID.String()
	if val, ok := r.cache.Load(key); ok {
		entry := val.(cacheEntry)
		if time.Now().Before(entry.expiryTime) {
			return entry.name
		}
		r.cache.Delete(key)
	}

	server, err := r.servers.GetByID(ctx, serverID)
	if err != nil {
		if err != data.ErrRecordNotFound {
			log.Printf("[ERROR] registry: server lookup %s: %v", serverID, err)
		}
		r.cache.Store(key, cacheEntry{unmapped: true, expiryTime: time.Now().Add(r.ttl)})
		return ""
	}

	r.cache.Store(key, cacheEntry{name: server.Name, expiryTime: time.Now().Add(r.ttl)})
	return server.Name
}

// CameraName returns the display name of a camera on a server, or ""
// when the location is system-level or the camera is not in the
// server's inventory. A whole inventory refresh fills the cache so a
// burst of events from one server costs a single listing.
func (r *Resolver) CameraName(ctx context.Context, serverID uuid.UUID, locationID int) string {
	if locationID < 0 {
		return ""
	}

	key := fmt.Sprintf("%s:%d", serverID, locationID)
	if val, ok := r.cache.Load(key); ok {
		entry := val.(cacheEntry)
		if time.Now().Before(entry.expiryTime) {
			return entry.name
		}
		r.cache.Delete(key)
	}

	server, err := r.servers.GetByID(ctx, serverID)
	if err != nil {
		if err != data.ErrRecordNotFound {
			log.Printf("[ERROR] registry: server lookup %s: %v", serverID, err)
		}
		r.cache.Store(key, cacheEntry{unmapped: true, expiryTime: time.Now().Add(r.ttl)})
		return ""
	}

	cams, err := r.cameras.ListCameras(ctx, server)
	if err != nil {
		log.Printf("[WARN] registry: camera list for %s: %v", server.Name, err)
		r.cache.Store(key, cacheEntry{unmapped: true, expiryTime: time.Now().Add(r.ttl)})
		return ""
	}

	expiry := time.Now().Add(r.ttl)
	found := ""
	for _, cam := range cams {
		camKey := fmt.Sprintf("%s:%d", serverID, cam.ID)
		r.cache.Store(camKey, cacheEntry{name: cam.Name, expiryTime: expiry})
		if cam.ID == locationID {
			found = cam.Name
		}
	}
	if found == "" {
		r.cache.Store(key, cacheEntry{unmapped: true, expiryTime: expiry})
	}
	return found
}
