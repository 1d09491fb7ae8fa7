// ABOUTME: Distance-weighted k-nearest-neighbor tag classifier over parameter vectors
// ABOUTME: Ephemeral by design; a model never survives a table rebuild or reload
package library

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/thomashuss/patch1/internal/models"
)

const (
	classifierK         = 5
	classifierTestShare = 0.25
)

// knnModel is a fitted multi-label nearest-neighbor classifier. Vectors are
// standardized with the training mean and deviation; distance is manhattan,
// votes are weighted by inverse distance.
type knnModel struct {
	generation string // database generation the model was fit against
	tags       []string
	mean       []float64
	scale      []float64
	train      [][]float64 // standardized training vectors
	labels     [][]bool    // tag membership per training vector
	k          int
}

// TrainClassifier fits a tag classifier from the tagged patches, after
// collapsing exact parameter-vector duplicates. It reports the held-out
// subset accuracy. Training fails when no tagged patches exist.
func (db *Database) TrainClassifier() (float64, error) {
	if !db.loaded {
		return 0, ErrNoDatabase
	}

	seen := make(map[string]bool)
	var samples []*models.Patch
	for _, p := range db.patches {
		key := paramKey(p.Params)
		if len(p.Tags) == 0 || seen[key] {
			continue
		}
		seen[key] = true
		samples = append(samples, p)
	}
	if len(samples) == 0 {
		return 0, fmt.Errorf("no tagged patches to learn from; add some tags and try again")
	}

	rand.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
	nTest := int(float64(len(samples)) * classifierTestShare)
	test, train := samples[:nTest], samples[nTest:]
	if len(test) == 0 {
		// Too few samples to hold anything out; score on the training set.
		test = train
	}

	mean, scale := standardization(train, db.engine.Definition().NumParams())

	m := &knnModel{
		generation: db.generation,
		tags:       db.tags,
		mean:       mean,
		scale:      scale,
		k:          classifierK,
	}
	if m.k > len(train) {
		m.k = len(train)
	}
	for _, p := range train {
		m.train = append(m.train, m.standardize(p.Params))
		m.labels = append(m.labels, membership(p.Tags, m.tags))
	}

	correct := 0
	for _, p := range test {
		got := m.predict(m.standardize(p.Params))
		if sameMembership(got, membership(p.Tags, m.tags)) {
			correct++
		}
	}

	db.model = m
	return float64(correct) / float64(len(test)), nil
}

// ClassifyTags predicts tags for every patch with the trained model and
// unions them into the existing tag sets; inferred tags are additive only.
// Returns the number of tag assignments added.
func (db *Database) ClassifyTags() (int, error) {
	if !db.loaded {
		return 0, ErrNoDatabase
	}
	if db.model == nil || db.model.generation != db.generation {
		return 0, ErrNotTrained
	}

	added := 0
	for _, p := range db.patches {
		pred := db.model.predict(db.model.standardize(p.Params))
		var tags []string
		for i, on := range pred {
			if on {
				tags = append(tags, db.model.tags[i])
			}
		}
		if next := models.EncodeTags(tags, p.Tags); len(next) > len(p.Tags) {
			added += len(next) - len(p.Tags)
			p.Tags = next
		}
	}
	db.dirty()
	return added, nil
}

// HasClassifier reports whether a model is trained and still valid for the
// current table.
func (db *Database) HasClassifier() bool {
	return db.model != nil && db.model.generation == db.generation
}

func (m *knnModel) standardize(params []int) []float64 {
	x := make([]float64, len(params))
	for i, v := range params {
		x[i] = (float64(v) - m.mean[i]) / m.scale[i]
	}
	return x
}

type neighbor struct {
	dist  float64
	index int
}

func (m *knnModel) predict(x []float64) []bool {
	neighbors := make([]neighbor, len(m.train))
	for i, t := range m.train {
		neighbors[i] = neighbor{dist: manhattan(x, t), index: i}
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i].dist < neighbors[j].dist })
	neighbors = neighbors[:m.k]

	// An exact match outweighs everything else.
	const minDist = 1e-9

	pred := make([]bool, len(m.tags))
	for tag := range pred {
		var yes, no float64
		for _, n := range neighbors {
			w := 1 / math.Max(n.dist, minDist)
			if m.labels[n.index][tag] {
				yes += w
			} else {
				no += w
			}
		}
		pred[tag] = yes > no
	}
	return pred
}

func manhattan(a, b []float64) float64 {
	var d float64
	for i := range a {
		d += math.Abs(a[i] - b[i])
	}
	return d
}

// standardization computes per-dimension mean and deviation over the
// training patches. A zero deviation becomes 1 so constant dimensions don't
// blow up.
func standardization(patches []*models.Patch, dims int) (mean, scale []float64) {
	mean = make([]float64, dims)
	scale = make([]float64, dims)
	n := float64(len(patches))

	for _, p := range patches {
		for i, v := range p.Params {
			mean[i] += float64(v)
		}
	}
	for i := range mean {
		mean[i] /= n
	}
	for _, p := range patches {
		for i, v := range p.Params {
			d := float64(v) - mean[i]
			scale[i] += d * d
		}
	}
	for i := range scale {
		scale[i] = math.Sqrt(scale[i] / n)
		if scale[i] == 0 {
			scale[i] = 1
		}
	}
	return mean, scale
}

func membership(tags, all []string) []bool {
	out := make([]bool, len(all))
	for i, t := range all {
		out[i] = models.HasAllTags(tags, []string{t})
	}
	return out
}

func sameMembership(a, b []bool) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
