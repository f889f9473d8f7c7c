// Package nav is the service layer of the pathfinding daemon. A Navigator
// holds the compiled passability model and movement graph for every loaded
// map, answers path queries through the cache, and keeps hot-route statistics
// in the sorted set.
package nav

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kasuganosora/tilepathd/cache"
	"github.com/kasuganosora/tilepathd/pathfind"
	"github.com/kasuganosora/tilepathd/resource"
)

// ChannelMapUpdated carries map IDs whose document changed. Every instance
// subscribed to it recompiles or evicts the named map.
const ChannelMapUpdated = "map_updated"

// ChannelCacheFlush tells every instance to invalidate its cached paths.
const ChannelCacheFlush = "cache_flush"

// ErrMapNotFound is returned when a query names a map that is not loaded.
var ErrMapNotFound = fmt.Errorf("nav: map not loaded")

// MapSource loads the current document for one map, used to refresh the
// compiled model after an update notification. Returning a nil map without
// error means the map was deleted.
type MapSource func(ctx context.Context, mapID int) (*resource.TileMap, error)

// Request is one path query.
type Request struct {
	MapID     int            `json:"map_id" binding:"required"`
	From      pathfind.Point `json:"from"`
	To        pathfind.Point `json:"to"`
	Heuristic string         `json:"heuristic"`
}

// Result is the answer to a Request. Found is false when no route exists;
// Cached is true when the answer came from the cache.
type Result struct {
	Path   []pathfind.Point `json:"path"`
	Cost   float64          `json:"cost"`
	Found  bool             `json:"found"`
	Cached bool             `json:"cached"`
}

// MapInfo is a summary of one loaded map.
type MapInfo struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type compiledMap struct {
	doc   *resource.TileMap
	graph pathfind.Graph[pathfind.Point]
	// rev is bumped on every recompile and baked into cache keys so stale
	// cached paths expire without explicit deletion.
	rev int64
}

// Options tunes a Navigator.
type Options struct {
	// PathCacheTTL bounds how long a computed path stays cached.
	PathCacheTTL time.Duration
	// HotRoutesSize is how many top routes per map survive a trim.
	HotRoutesSize int
}

// Navigator answers path queries over the loaded maps.
type Navigator struct {
	mu   sync.RWMutex
	maps map[int]*compiledMap

	cache  cache.Cache
	pubsub cache.PubSub
	logger *zap.Logger
	opts   Options
}

// New creates a Navigator with no maps loaded.
func New(c cache.Cache, ps cache.PubSub, logger *zap.Logger, opts Options) *Navigator {
	if opts.PathCacheTTL <= 0 {
		opts.PathCacheTTL = 5 * time.Minute
	}
	if opts.HotRoutesSize <= 0 {
		opts.HotRoutesSize = 100
	}
	return &Navigator{
		maps:   make(map[int]*compiledMap),
		cache:  c,
		pubsub: ps,
		logger: logger,
		opts:   opts,
	}
}

// RegisterMap compiles a map document and makes it queryable, replacing any
// previous version of the same map.
func (n *Navigator) RegisterMap(m *resource.TileMap) error {
	if err := m.Validate(); err != nil {
		return err
	}
	pm, err := resource.Compile(m)
	if err != nil {
		return err
	}
	graph := resource.BuildGraph(pm)

	n.mu.Lock()
	rev := int64(1)
	if old, ok := n.maps[m.ID]; ok {
		rev = old.rev + 1
	}
	n.maps[m.ID] = &compiledMap{doc: m, graph: graph, rev: rev}
	n.mu.Unlock()

	n.logger.Info("map registered",
		zap.Int("map_id", m.ID),
		zap.String("name", m.Name),
		zap.Int("width", m.Width),
		zap.Int("height", m.Height),
		zap.Int64("rev", rev))
	return nil
}

// RemoveMap drops a map from the navigator. Unknown IDs are ignored.
func (n *Navigator) RemoveMap(mapID int) {
	n.mu.Lock()
	_, ok := n.maps[mapID]
	delete(n.maps, mapID)
	n.mu.Unlock()
	if ok {
		n.logger.Info("map removed", zap.Int("map_id", mapID))
	}
}

// Maps lists the loaded maps ordered by ID.
func (n *Navigator) Maps() []MapInfo {
	n.mu.RLock()
	defer n.mu.RUnlock()
	infos := make([]MapInfo, 0, len(n.maps))
	for _, cm := range n.maps {
		infos = append(infos, MapInfo{
			ID:     cm.doc.ID,
			Name:   cm.doc.Name,
			Width:  cm.doc.Width,
			Height: cm.doc.Height,
		})
	}
	for i := 1; i < len(infos); i++ {
		for j := i; j > 0 && infos[j].ID < infos[j-1].ID; j-- {
			infos[j], infos[j-1] = infos[j-1], infos[j]
		}
	}
	return infos
}

// MapByID returns one loaded map's document.
func (n *Navigator) MapByID(mapID int) (*resource.TileMap, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	cm, ok := n.maps[mapID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMapNotFound, mapID)
	}
	return cm.doc, nil
}

// FindPath answers one path query. It consults the path cache first, runs
// the search on a miss, then records the route in the hot-route ranking.
// Queries naming coordinates outside the map fail with
// pathfind.ErrNodeNotInGraph.
func (n *Navigator) FindPath(ctx context.Context, req Request) (*Result, error) {
	h, err := HeuristicByName(req.Heuristic)
	if err != nil {
		return nil, err
	}

	n.mu.RLock()
	cm, ok := n.maps[req.MapID]
	var rev int64
	if ok {
		rev = cm.rev
	}
	n.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrMapNotFound, req.MapID)
	}

	key := pathKey(req, rev)
	if raw, err := n.cache.Get(ctx, key); err == nil {
		var res Result
		if err := json.Unmarshal([]byte(raw), &res); err == nil {
			res.Cached = true
			n.bumpRoute(ctx, req)
			return &res, nil
		}
		n.logger.Warn("bad cached path dropped", zap.String("key", key), zap.Error(err))
		_ = n.cache.Del(ctx, key)
	}

	search := pathfind.NewSearch(cm.graph, h)
	path, err := search.FindPath(req.From, req.To)
	if err != nil {
		return nil, err
	}
	res := &Result{Path: path, Found: path != nil}
	if res.Found {
		cost, err := search.Cost(path)
		if err != nil {
			return nil, err
		}
		res.Cost = cost
	}

	if raw, err := json.Marshal(res); err == nil {
		if err := n.cache.Set(ctx, key, string(raw), n.opts.PathCacheTTL); err != nil {
			n.logger.Warn("path cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	n.bumpRoute(ctx, req)
	return res, nil
}

// Flush invalidates every cached path on every instance: the local maps get
// their revisions bumped immediately, the rest of the cluster through the
// flush channel.
func (n *Navigator) Flush(ctx context.Context) error {
	n.flushLocal()
	return n.pubsub.Publish(ctx, ChannelCacheFlush, "")
}

func (n *Navigator) flushLocal() {
	n.mu.Lock()
	for _, cm := range n.maps {
		cm.rev++
	}
	n.mu.Unlock()
	n.logger.Info("path cache flushed")
}

// NotifyMapUpdated publishes a map update so every instance refreshes its
// compiled model.
func (n *Navigator) NotifyMapUpdated(ctx context.Context, mapID int) error {
	return n.pubsub.Publish(ctx, ChannelMapUpdated, strconv.Itoa(mapID))
}

// WatchUpdates subscribes to map update and cache flush notifications,
// reloading changed maps from src until ctx is cancelled. It returns after
// the subscription is established; reloading happens on a background
// goroutine.
func (n *Navigator) WatchUpdates(ctx context.Context, src MapSource) error {
	ch, cancel, err := n.pubsub.Subscribe(ctx, ChannelMapUpdated, ChannelCacheFlush)
	if err != nil {
		return err
	}
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg.Channel == ChannelCacheFlush {
					n.flushLocal()
					continue
				}
				mapID, err := strconv.Atoi(msg.Payload)
				if err != nil {
					n.logger.Warn("bad map update payload", zap.String("payload", msg.Payload))
					continue
				}
				n.reload(ctx, src, mapID)
			}
		}
	}()
	return nil
}

func (n *Navigator) reload(ctx context.Context, src MapSource, mapID int) {
	doc, err := src(ctx, mapID)
	if err != nil {
		n.logger.Error("map reload failed", zap.Int("map_id", mapID), zap.Error(err))
		return
	}
	if doc == nil {
		n.RemoveMap(mapID)
		return
	}
	if err := n.RegisterMap(doc); err != nil {
		n.logger.Error("map recompile failed", zap.Int("map_id", mapID), zap.Error(err))
	}
}

// RouteStat is one entry of the hot-route ranking.
type RouteStat struct {
	Route string  `json:"route"`
	Count float64 `json:"count"`
}

// HotRoutes returns the most requested routes of one map, best first.
func (n *Navigator) HotRoutes(ctx context.Context, mapID int, limit int) ([]RouteStat, error) {
	if limit <= 0 {
		limit = 10
	}
	key := routesKey(mapID)
	members, err := n.cache.ZRevRange(ctx, key, 0, int64(limit-1))
	if err != nil {
		return nil, err
	}
	stats := make([]RouteStat, 0, len(members))
	for _, m := range members {
		score, err := n.cache.ZScore(ctx, key, m)
		if err != nil {
			continue
		}
		stats = append(stats, RouteStat{Route: m, Count: score})
	}
	return stats, nil
}

// TrimHotRoutes drops all but the top entries of every loaded map's ranking.
func (n *Navigator) TrimHotRoutes(ctx context.Context) {
	n.mu.RLock()
	ids := make([]int, 0, len(n.maps))
	for id := range n.maps {
		ids = append(ids, id)
	}
	n.mu.RUnlock()
	for _, id := range ids {
		err := n.cache.ZRemRangeByRank(ctx, routesKey(id), 0, int64(-n.opts.HotRoutesSize-1))
		if err != nil {
			n.logger.Warn("hot route trim failed", zap.Int("map_id", id), zap.Error(err))
		}
	}
}

func (n *Navigator) bumpRoute(ctx context.Context, req Request) {
	member := fmt.Sprintf("%d,%d->%d,%d", req.From.X, req.From.Y, req.To.X, req.To.Y)
	if _, err := n.cache.ZIncrBy(ctx, routesKey(req.MapID), 1, member); err != nil {
		n.logger.Warn("route stat update failed", zap.Int("map_id", req.MapID), zap.Error(err))
	}
}

func pathKey(req Request, rev int64) string {
	h := req.Heuristic
	if h == "" {
		h = DefaultHeuristic
	}
	return fmt.Sprintf("path:%d:%d:%s:%d,%d-%d,%d",
		req.MapID, rev, h, req.From.X, req.From.Y, req.To.X, req.To.Y)
}

func routesKey(mapID int) string {
	return fmt.Sprintf("hot_routes:%d", mapID)
}
