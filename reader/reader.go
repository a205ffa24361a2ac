// Package reader reads OSM PBF files and turns filtered nodes, ways and
// relations into records with geometries.
//
// Reading takes two steps. Scan collects the ids of all nodes, ways and
// relations that are referenced by relevant elements, so that only those
// geometries are kept in the geometry stores. Read then parses the file
// once more, stores the referenced geometries and emits the records.
package reader

import (
	"context"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cheggaaa/pb/v3"
	osm "github.com/omniscale/go-osm"
	"github.com/omniscale/go-osm/parser/pbf"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"

	"github.com/smartdatalake/osmwrangle/cache"
	"github.com/smartdatalake/osmwrangle/element"
	"github.com/smartdatalake/osmwrangle/filter"
	"github.com/smartdatalake/osmwrangle/geom"
	"github.com/smartdatalake/osmwrangle/log"
	"github.com/smartdatalake/osmwrangle/stats"
	"github.com/smartdatalake/osmwrangle/util"
)

type Options struct {
	// Filters assign the categories. Without filters, every tagged element
	// is a record with its kind as category.
	Filters *filter.Forest
	// KeepUnnamed keeps records without a name tag.
	KeepUnnamed bool
	// ClosedAsPolygons builds polygons for closed ways.
	ClosedAsPolygons bool
	// Concurrency is the number of parsers and of workers per element
	// kind. Defaults to the number of CPUs.
	Concurrency int
	// Progress shows a progress bar while scanning.
	Progress bool
	// Metadata adds version, timestamp, changeset and author to the
	// records.
	Metadata bool
}

type Reader struct {
	opts  Options
	cache *cache.GeometryCache
	stats *stats.Statistics
	recon geom.Reconstructor

	nodes     element.IDSet
	ways      element.IDSet
	relations element.IDSet

	mu       sync.Mutex
	deferred []osm.Relation
}

// New returns a reader that keeps geometries in c. c must be opened.
func New(opts Options, c *cache.GeometryCache, st *stats.Statistics) *Reader {
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.NumCPU()
	}
	if st == nil {
		st = stats.NewStatistics()
	}
	return &Reader{
		opts:      opts,
		cache:     c,
		stats:     st,
		recon:     geom.Reconstructor{Nodes: c.Nodes, Ways: c.Ways, Relations: c.Relations},
		nodes:     make(element.IDSet),
		ways:      make(element.IDSet),
		relations: make(element.IDSet),
	}
}

// category returns the category of an element with tags, or false if the
// element is no record.
func (r *Reader) category(kind element.Kind, tags osm.Tags) (string, bool) {
	if len(tags) == 0 {
		return "", false
	}
	if r.opts.Filters == nil {
		return kind.String(), true
	}
	cat, ok := r.opts.Filters.CategoryFor(tags)
	return cat, ok && cat != ""
}

// parse runs the PBF parser with conf and calls consume in a separate
// goroutine. consume must read the configured channels until they are
// closed.
func (r *Reader) parse(ctx context.Context, path string, conf pbf.Config, progress string, consume func()) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening input")
	}
	defer f.Close()

	var in io.Reader = f
	if progress != "" && r.opts.Progress {
		if fi, err := f.Stat(); err == nil {
			bar := pb.Start64(fi.Size())
			bar.Set("prefix", progress)
			bar.Set(pb.Bytes, true)
			bar.SetRefreshRate(time.Second)
			defer bar.Finish()
			in = bar.NewProxyReader(f)
		}
	}

	conf.Concurrency = r.opts.Concurrency
	p := pbf.New(in, conf)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consume()
	}()

	if err := p.Parse(ctx); err != nil {
		if ctx.Err() == nil {
			// the parser leaves the channels open on read errors
			return errors.Wrapf(err, "parsing %s", path)
		}
		wg.Wait()
		return ctx.Err()
	}
	wg.Wait()
	return nil
}

// Scan collects the ids of all elements that are needed to build the
// geometries of records: members of relevant relations, members of
// relations that are members themselves, and nodes of relevant or
// referenced ways.
func (r *Reader) Scan(ctx context.Context, path string) error {
	defer log.Step("Scanning references")()

	expanded := make(element.IDSet)
	for pass := 1; ; pass++ {
		rels := make(chan []osm.Relation, 4)
		pending := 0
		err := r.parse(ctx, path, pbf.Config{Relations: rels}, "relations", func() {
			for rs := range rels {
				for i := range rs {
					rel := &rs[i]
					if expanded.Contains(rel.ID) {
						continue
					}
					_, relevant := r.category(element.RELATION, rel.Tags)
					if !relevant && !r.relations.Contains(rel.ID) {
						continue
					}
					expanded.Add(rel.ID)
					r.nodes.Refs(rel.Members, osm.NodeMember)
					r.ways.Refs(rel.Members, osm.WayMember)
					for _, m := range rel.Members {
						if m.Type == osm.RelationMember && !expanded.Contains(m.ID) {
							r.relations.Add(m.ID)
							pending++
						}
					}
				}
			}
		})
		if err != nil {
			return err
		}
		if pending == 0 {
			break
		}
		// members of referenced relations that were parsed before they got
		// referenced need another pass
		unresolved := false
		for id := range r.relations {
			if !expanded.Contains(id) {
				unresolved = true
				break
			}
		}
		if !unresolved {
			break
		}
		log.Printf("[debug] relation scan %d found nested relations", pass)
	}

	ways := make(chan []osm.Way, 4)
	err := r.parse(ctx, path, pbf.Config{Ways: ways}, "ways", func() {
		for ws := range ways {
			for i := range ws {
				w := &ws[i]
				if _, relevant := r.category(element.WAY, w.Tags); !relevant && !r.ways.Contains(w.ID) {
					continue
				}
				for _, ref := range w.Refs {
					r.nodes.Add(ref)
				}
			}
		}
	})
	if err != nil {
		return err
	}
	log.Printf("[info] referenced %d nodes, %d ways and %d relations", len(r.nodes), len(r.ways), len(r.relations))
	return nil
}

// Read parses the file, stores the referenced geometries and sends all
// records to out. Nodes are stored before ways are processed, and ways
// before relations. Relations with members that are not available yet are
// retried once after the whole file was read. Read does not close out.
func (r *Reader) Read(ctx context.Context, path string, out chan<- *element.Record) error {
	defer log.Step("Reading " + path)()

	n := r.opts.Concurrency
	coords := make(chan []osm.Node, 4)
	nodes := make(chan []osm.Node, 4)
	ways := make(chan []osm.Way, 4)
	relations := make(chan []osm.Relation, 4)

	coordsSynced := make(chan struct{})
	coordsSync := util.NewSyncPoint(2*n, func() {
		coordsSynced <- struct{}{}
	})
	waysSynced := make(chan struct{})
	waysSync := util.NewSyncPoint(n, func() {
		waysSynced <- struct{}{}
	})

	conf := pbf.Config{
		IncludeMetadata: r.opts.Metadata,
		Coords:          coords,
		Nodes:           nodes,
		Ways:            ways,
		Relations:       relations,
		OnFirstWay: func() {
			for i := 0; i < n; i++ {
				coords <- nil
				nodes <- nil
			}
			<-coordsSynced
		},
		OnFirstRelation: func() {
			for i := 0; i < n; i++ {
				ways <- nil
			}
			<-waysSynced
		},
	}

	emit := func(rec *element.Record) {
		select {
		case out <- rec:
		case <-ctx.Done():
		}
	}

	err := r.parse(ctx, path, conf, "", func() {
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(4)
			go func() {
				defer wg.Done()
				for nds := range coords {
					if nds == nil {
						coordsSync.Sync()
						continue
					}
					r.storeCoords(nds)
				}
			}()
			go func() {
				defer wg.Done()
				for nds := range nodes {
					if nds == nil {
						coordsSync.Sync()
						continue
					}
					r.stats.AddNodes(len(nds))
					for i := range nds {
						if rec := r.nodeRecord(&nds[i]); rec != nil {
							emit(rec)
						}
					}
				}
			}()
			go func() {
				defer wg.Done()
				for ws := range ways {
					if ws == nil {
						waysSync.Sync()
						continue
					}
					r.stats.AddWays(len(ws))
					for i := range ws {
						if rec := r.way(&ws[i]); rec != nil {
							emit(rec)
						}
					}
				}
			}()
			go func() {
				defer wg.Done()
				for rels := range relations {
					r.stats.AddRelations(len(rels))
					for i := range rels {
						if rec := r.relation(&rels[i], false); rec != nil {
							emit(rec)
						}
					}
				}
			}()
		}
		wg.Wait()
	})
	if err != nil {
		return err
	}

	return r.retryDeferred(ctx, emit)
}

func (r *Reader) storeCoords(nds []osm.Node) {
	geoms := make(map[int64]orb.Geometry)
	for i := range nds {
		if r.nodes.Contains(nds[i].ID) {
			geoms[nds[i].ID] = geom.NodePoint(nds[i].Long, nds[i].Lat)
		}
	}
	if len(geoms) == 0 {
		return
	}
	if err := r.cache.Nodes.PutAll(geoms); err != nil {
		log.Printf("[error] storing nodes: %s", err)
	}
}

// accepts returns true if an element with tags becomes a record.
func (r *Reader) accepts(kind element.Kind, tags osm.Tags) bool {
	if _, ok := r.category(kind, tags); !ok {
		return false
	}
	return r.opts.KeepUnnamed || tags["name"] != ""
}

// newRecord returns the record of an element, or nil if the element has no
// category or no name. Tagged elements that are no records are counted as
// rejected.
func (r *Reader) newRecord(kind element.Kind, elem *osm.Element) *element.Record {
	id, tags := elem.ID, elem.Tags
	if len(tags) == 0 {
		return nil
	}
	cat, ok := r.category(kind, tags)
	if !ok {
		r.stats.AddRejected(1)
		return nil
	}
	rec := element.NewRecord(kind, id, tags, cat)
	if rec.Name == "" && !r.opts.KeepUnnamed {
		r.stats.AddRejected(1)
		return nil
	}
	if r.opts.Metadata {
		rec.AddMetadata(elem.Metadata)
	}
	return rec
}

func (r *Reader) nodeRecord(nd *osm.Node) *element.Record {
	rec := r.newRecord(element.NODE, &nd.Element)
	if rec != nil {
		rec.Geometry = geom.NodePoint(nd.Long, nd.Lat)
	}
	return rec
}

func (r *Reader) way(w *osm.Way) *element.Record {
	rec := r.newRecord(element.WAY, &w.Element)
	referenced := r.ways.Contains(w.ID)
	if rec == nil && !referenced {
		return nil
	}
	g := geom.BuildWay(w.Refs, r.cache.Nodes, r.opts.ClosedAsPolygons)
	if referenced {
		if err := r.cache.Ways.Put(w.ID, g); err != nil {
			log.Printf("[error] storing way %d: %s", w.ID, err)
		}
	}
	if rec != nil {
		rec.Geometry = g
	}
	return rec
}

// relation builds the geometry of rel. Incomplete relations are deferred
// unless final is set.
func (r *Reader) relation(rel *osm.Relation, final bool) *element.Record {
	referenced := r.relations.Contains(rel.ID)
	if !referenced && !r.accepts(element.RELATION, rel.Tags) {
		r.newRecord(element.RELATION, &rel.Element)
		return nil
	}

	g, err := r.recon.BuildRelation(rel)
	if errors.Cause(err) == geom.ErrIncomplete {
		if !final {
			r.mu.Lock()
			r.deferred = append(r.deferred, *rel)
			r.mu.Unlock()
			r.stats.AddDeferred(1)
			return nil
		}
		log.Printf("[debug] relation %d still incomplete", rel.ID)
		g = nil
	} else if err != nil {
		log.Printf("[warn] relation %d: %s", rel.ID, err)
		g = nil
	}

	if referenced {
		if err := r.cache.Relations.Put(rel.ID, g); err != nil {
			log.Printf("[error] storing relation %d: %s", rel.ID, err)
		}
	}
	rec := r.newRecord(element.RELATION, &rel.Element)
	if rec == nil {
		return nil
	}
	if errors.Cause(err) == geom.ErrIncomplete {
		r.stats.AddRejected(1)
		return nil
	}
	rec.Geometry = g
	return rec
}

// retryDeferred builds all deferred relations once more, in the order they
// were read.
func (r *Reader) retryDeferred(ctx context.Context, emit func(*element.Record)) error {
	r.mu.Lock()
	deferred := r.deferred
	r.deferred = nil
	r.mu.Unlock()
	if len(deferred) == 0 {
		return nil
	}
	log.Printf("[info] retrying %d incomplete relations", len(deferred))
	for i := range deferred {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.stats.AddRetried(1)
		if rec := r.relation(&deferred[i], true); rec != nil {
			emit(rec)
		}
	}
	return nil
}
