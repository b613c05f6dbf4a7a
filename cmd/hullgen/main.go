// hullgen generates a procedural point cloud, computes its convex hull, and
// writes the result as a glTF mesh.
//
// Usage:
//
//	hullgen [options] output.glb
//
// The generator sweeps directions over a sphere and modulates the radius
// with smooth noise, producing an organic blob; optional spikes push a few
// points far outside the surface, which makes for a good visual check that
// only true extreme points survive on the hull.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	fastnoiselite "github.com/furui/fastnoiselite-go"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/profile"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"gopkg.in/yaml.v2"

	"github.com/meshkit/quickhull"
	"github.com/meshkit/quickhull/predicate"
)

// GeneratorConfig holds the point-cloud generator parameters. It can be
// loaded from a yaml file with -config; flags provide the defaults.
type GeneratorConfig struct {
	Points    int     `yaml:"points"`
	Spikes    int     `yaml:"spikes"`
	Seed      int32   `yaml:"seed"`
	Frequency float64 `yaml:"frequency"`
	Amplitude float64 `yaml:"amplitude"`
	SpikeLen  float64 `yaml:"spike_length"`
}

func main() {
	gen := GeneratorConfig{
		Points:    2000,
		Spikes:    12,
		Seed:      1,
		Frequency: 0.8,
		Amplitude: 0.25,
		SpikeLen:  2.5,
	}

	configPath := flag.String("config", "", "yaml file with generator parameters")
	merge := flag.Bool("merge", false, "merge coplanar hull faces into polygons")
	fast := flag.Bool("fast", false, "use approximate (non-exact) orientation predicates")
	prof := flag.Bool("profile", false, "write a CPU profile of the hull construction")
	flag.IntVar(&gen.Points, "points", gen.Points, "number of surface points to generate")
	flag.IntVar(&gen.Spikes, "spikes", gen.Spikes, "number of spike points to add")
	seed := flag.Int("seed", int(gen.Seed), "generator seed")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hullgen [options] output.glb")
		flag.PrintDefaults()
		os.Exit(2)
	}
	output := flag.Arg(0)
	gen.Seed = int32(*seed)

	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := yaml.Unmarshal(data, &gen); err != nil {
			log.Fatalf("parsing %s: %v", *configPath, err)
		}
	}

	points := generate(gen)
	log.Printf("generated %d points (seed %d)", len(points), gen.Seed)

	cfg := quickhull.Config{MergeCoplanarFaces: *merge}
	if *fast {
		cfg.Exactness = predicate.FastApproximate
	}

	if *prof {
		defer profile.Start(profile.CPUProfile).Stop()
	}
	hull, err := quickhull.ComputeHull(points, cfg)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("hull: %d vertices, %d faces, volume %.4f",
		hull.VertexCount(), len(hull.Faces), hull.Volume())
	if *merge {
		log.Printf("merged: %d polygons", len(hull.Polygons))
	}

	if err := saveHull(hull, output); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", output)
}

// generate builds the point cloud: a noise-modulated sphere surface plus a
// handful of long spikes in noise-chosen directions.
func generate(gen GeneratorConfig) []mgl64.Vec3 {
	noise := fastnoiselite.NewNoise()
	noise.SetNoiseType(fastnoiselite.NoiseTypeValueCubic)
	noise.Seed = gen.Seed
	noise.Frequency = gen.Frequency

	radiusAt := func(dir mgl64.Vec3) float64 {
		n := noise.GetNoise3D(
			fastnoiselite.FNLfloat(dir[0]),
			fastnoiselite.FNLfloat(dir[1]),
			fastnoiselite.FNLfloat(dir[2]),
		)
		return 1.0 + gen.Amplitude*float64(n)
	}

	rings := int(math.Sqrt(float64(gen.Points)))
	if rings < 2 {
		rings = 2
	}

	points := make([]mgl64.Vec3, 0, gen.Points+gen.Spikes)
	for i := 0; i < rings; i++ {
		polar := math.Pi * (float64(i) + 0.5) / float64(rings)
		for j := 0; j < rings; j++ {
			azimuth := 2 * math.Pi * float64(j) / float64(rings)
			dir := mgl64.Vec3{
				math.Sin(polar) * math.Cos(azimuth),
				math.Cos(polar),
				math.Sin(polar) * math.Sin(azimuth),
			}
			points = append(points, dir.Mul(radiusAt(dir)))
		}
	}

	for s := 0; s < gen.Spikes; s++ {
		t := float64(s) / float64(gen.Spikes)
		polar := math.Acos(1 - 2*t)
		azimuth := math.Pi * (1 + math.Sqrt(5)) * float64(s)
		dir := mgl64.Vec3{
			math.Sin(polar) * math.Cos(azimuth),
			math.Cos(polar),
			math.Sin(polar) * math.Sin(azimuth),
		}
		points = append(points, dir.Mul(gen.SpikeLen*radiusAt(dir)))
	}
	return points
}

// saveHull writes the hull as a single-mesh glTF document. The extension
// picks the container: .glb for binary, anything else for JSON.
func saveHull(hull *quickhull.Hull, path string) error {
	if hull.Dimension != 3 {
		return fmt.Errorf("cannot export a %d-dimensional hull as a mesh", hull.Dimension)
	}

	// Compact the hull's original-index vertex set into a local buffer.
	local := make(map[int]uint32, hull.VertexCount())
	positions := make([][3]float32, 0, hull.VertexCount())
	for _, origIdx := range hull.Vertices {
		pos, _ := hull.Position(origIdx)
		local[origIdx] = uint32(len(positions))
		positions = append(positions, [3]float32{float32(pos[0]), float32(pos[1]), float32(pos[2])})
	}
	indices := make([]uint32, 0, len(hull.Faces)*3)
	for _, f := range hull.Faces {
		indices = append(indices, local[f[0]], local[f[1]], local[f[2]])
	}

	doc := gltf.NewDocument()
	attributes := map[string]uint32{
		"POSITION": modeler.WritePosition(doc, positions),
	}
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "hull",
		Primitives: []*gltf.Primitive{{
			Attributes: attributes,
			Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "hull", Mesh: gltf.Index(uint32(len(doc.Meshes) - 1))})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)-1))

	if strings.ToLower(filepath.Ext(path)) == ".glb" {
		return gltf.SaveBinary(doc, path)
	}
	return gltf.Save(doc, path)
}
