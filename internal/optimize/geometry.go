package optimize

import (
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"nif-optimizer/internal/nif"
	"nif-optimizer/internal/tristrip"
)

// Result describes one optimized geometry block.
type Result struct {
	// Ref is the optimized block. It differs from Source when the block
	// changed between strips and triangles, and is Nil when Dropped.
	Ref     nif.Ref
	Source  nif.Ref
	Kind    nif.Kind
	Dropped bool

	VerticesBefore int
	VerticesAfter  int
	IndicesBefore  int
	IndicesAfter   int
	AvgStripLength float64
}

// Replaced reports whether links to the source block must be rewritten.
func (r Result) Replaced() bool { return r.Ref != r.Source }

// Geometry optimizes the NiTriShape or NiTriStrips block at r: duplicate
// vertices are welded, connectivity is rebuilt as strips or triangles,
// and skin weights, skin partition, morph targets and tangent space are
// brought in line with the new vertex order.
//
// Geometry with fewer than three vertices is reported as Dropped and left
// untouched. A new block is added to g when the connectivity kind changes;
// the caller replaces the links to r.
func Geometry(g *nif.Graph, r nif.Ref, opts Options, log *logrus.Entry) (Result, error) {
	opts = opts.withDefaults()
	geom, ok := nif.Get[nif.Geom](g, r)
	if !ok {
		return Result{}, errors.Wrapf(ErrNotGeometry, "block %s", r)
	}
	data, ok := nif.Get[nif.GeomData](g, geom.Geom().Data)
	if !ok {
		return Result{}, errors.Wrapf(ErrNoData, "%s %s", geom.Kind(), r)
	}
	gd := data.GeomData()
	res := Result{Ref: r, Source: r, Kind: geom.Kind(), VerticesBefore: gd.NumVertices()}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("block", r.String())
	if name := geom.Net().Name; name != "" {
		log = log.WithField("name", name)
	}
	log.Debug("optimizing geometry")

	if gd.NumVertices() < 3 {
		log.Info("less than 3 vertices: removing block")
		res.Ref = nif.Nil
		res.Dropped = true
		return res, nil
	}

	skin := skinOf(g, geom.Geom())
	var oldWeights [][]boneWeight
	if skin != nil {
		oldWeights = vertexWeights(skin.data, gd.NumVertices())
	}

	remap, err := Weld(gd, opts.Precision)
	if err != nil {
		return res, errors.Wrapf(err, "%s %s", geom.Kind(), r)
	}
	log.Infof("removing duplicate vertices: %d -> %d", gd.NumVertices(), remap.Len())
	if err := remapConnectivity(data, remap); err != nil {
		return res, errors.Wrapf(err, "%s %s", geom.Kind(), r)
	}
	remap.Apply(gd)
	res.VerticesAfter = remap.Len()

	final, err := rebuildConnectivity(g, r, geom, data, opts, log, &res)
	if err != nil {
		return res, err
	}
	res.Ref = final
	finalGeom, _ := nif.Get[nif.Geom](g, final)
	res.Kind = finalGeom.Kind()
	tris := triangles(g, finalGeom)

	if skin != nil {
		newWeights := gather(oldWeights, remap.Inverse)
		rebuildBoneWeights(skin.data, newWeights)
		if part := skin.partition(g); part != nil {
			log.Info("updating skin partition")
			parts, err := buildPartitions(newWeights, tris, opts.MaxBonesPerPartition, opts.MaxBonesPerVertex)
			if err != nil {
				return res, errors.Wrapf(err, "%s %s", geom.Kind(), r)
			}
			part.Partitions = parts
		}
	}

	for _, md := range morphData(g, finalGeom) {
		log.Info("updating morphs")
		remapMorphs(md, remap)
	}

	if ts := tangentSpace(g, finalGeom); ts != nil {
		log.Info("recalculating tangent space")
		updateTangentSpace(ts, finalGeom, g, tris)
	}
	return res, nil
}

func remapConnectivity(data nif.GeomData, m Remap) error {
	var err error
	switch d := data.(type) {
	case *nif.TriShapeData:
		for i := range d.Triangles {
			for j := range d.Triangles[i] {
				if d.Triangles[i][j], err = m.Index(d.Triangles[i][j]); err != nil {
					return errors.Wrapf(err, "triangle %d", i)
				}
			}
		}
	case *nif.TriStripsData:
		for i := range d.Strips {
			for j := range d.Strips[i] {
				if d.Strips[i][j], err = m.Index(d.Strips[i][j]); err != nil {
					return errors.Wrapf(err, "strip %d", i)
				}
			}
		}
	default:
		return errors.Wrapf(ErrNoData, "unsupported data block %s", data.Kind())
	}
	return nil
}

// rebuildConnectivity re-derives strips and decides between strips and
// triangles. It returns the ref of the resulting geometry block.
func rebuildConnectivity(g *nif.Graph, r nif.Ref, geom nif.Geom, data nif.GeomData, opts Options, log *logrus.Entry, res *Result) (nif.Ref, error) {
	var strips [][]uint16
	var tris [][3]uint16
	switch d := data.(type) {
	case *nif.TriStripsData:
		res.IndicesBefore = tristrip.IndexCount(d.Strips)
		tris = tristrip.Triangulate(d.Strips)
		strips = tristrip.Stripify(tris)
		d.Strips = strips
		log.Infof("recalculating strips: length %d -> %d", res.IndicesBefore, tristrip.IndexCount(strips))
	case *nif.TriShapeData:
		res.IndicesBefore = 3 * len(d.Triangles)
		tris = d.Triangles
		strips = tristrip.Stripify(tris)
		log.Debug("stripifying")
	}

	res.AvgStripLength = tristrip.AverageLength(strips)
	log.Debugf("average strip length is %f", res.AvgStripLength)

	if res.AvgStripLength < opts.StripLengthCutoff {
		res.IndicesAfter = 3 * len(tris)
		if _, ok := data.(*nif.TriShapeData); ok {
			return r, nil
		}
		log.Infof("average strip length less than %.1f: triangulating", opts.StripLengthCutoff)
		return toTriShape(g, geom, data.GeomData(), tris)
	}

	if opts.Stitch && len(strips) > 1 {
		log.Infof("stitching strips (using %d stitches)", len(strips)-1)
		strips = [][]uint16{tristrip.Stitch(strips)}
	}
	res.IndicesAfter = tristrip.IndexCount(strips)
	if d, ok := data.(*nif.TriStripsData); ok {
		d.Strips = strips
		return r, nil
	}
	return toTriStrips(g, geom, data.GeomData(), strips)
}

func toTriShape(g *nif.Graph, geom nif.Geom, gd *nif.GeometryData, tris [][3]uint16) (nif.Ref, error) {
	data := &nif.TriShapeData{Triangles: tris}
	if err := copier.CopyWithOption(&data.GeometryData, gd, copier.Option{DeepCopy: true}); err != nil {
		return nif.Nil, errors.Wrap(err, "copy geometry data")
	}
	shape := &nif.TriShape{}
	if err := copier.CopyWithOption(&shape.Geometry, geom.Geom(), copier.Option{DeepCopy: true}); err != nil {
		return nif.Nil, errors.Wrap(err, "copy geometry")
	}
	shape.Data = g.Add(data)
	return g.Add(shape), nil
}

func toTriStrips(g *nif.Graph, geom nif.Geom, gd *nif.GeometryData, strips [][]uint16) (nif.Ref, error) {
	data := &nif.TriStripsData{Strips: strips}
	if err := copier.CopyWithOption(&data.GeometryData, gd, copier.Option{DeepCopy: true}); err != nil {
		return nif.Nil, errors.Wrap(err, "copy geometry data")
	}
	ts := &nif.TriStrips{}
	if err := copier.CopyWithOption(&ts.Geometry, geom.Geom(), copier.Option{DeepCopy: true}); err != nil {
		return nif.Nil, errors.Wrap(err, "copy geometry")
	}
	ts.Data = g.Add(data)
	return g.Add(ts), nil
}

// triangles returns the triangles drawn by geometry.
func triangles(g *nif.Graph, geom nif.Geom) [][3]uint16 {
	switch d := g.Block(geom.Geom().Data).(type) {
	case *nif.TriShapeData:
		return d.Triangles
	case *nif.TriStripsData:
		return tristrip.Triangulate(d.Strips)
	}
	return nil
}
