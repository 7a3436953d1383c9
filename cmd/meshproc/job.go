package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/binzume/meshproc/meshio"
	"github.com/binzume/meshproc/preview"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Job is a batch of steps applied to one mesh file.
//
//	input: bunny.obj
//	output: bunny_out.glb
//	steps:
//	  - fillholes: {max_size: 100}
//	  - simplify: {ratio: 0.3, normal_deviation: 30}
type Job struct {
	Input   string    `yaml:"input"`
	Output  string    `yaml:"output"`
	Preview string    `yaml:"preview"`
	Steps   []JobStep `yaml:"steps"`
}

// JobStep holds exactly one operation.
type JobStep struct {
	Simplify    *SimplifyStep    `yaml:"simplify,omitempty"`
	FillHoles   *FillHolesStep   `yaml:"fillholes,omitempty"`
	Fair        *FairStep        `yaml:"fair,omitempty"`
	Transform   *TransformStep   `yaml:"transform,omitempty"`
	Triangulate *TriangulateStep `yaml:"triangulate,omitempty"`
}

func (s *JobStep) step() (step, error) {
	var steps []step
	if s.Simplify != nil {
		steps = append(steps, s.Simplify)
	}
	if s.FillHoles != nil {
		steps = append(steps, s.FillHoles)
	}
	if s.Fair != nil {
		steps = append(steps, s.Fair)
	}
	if s.Transform != nil {
		steps = append(steps, s.Transform)
	}
	if s.Triangulate != nil {
		steps = append(steps, s.Triangulate)
	}
	if len(steps) != 1 {
		return nil, fmt.Errorf("job: a step needs exactly one operation (%d)", len(steps))
	}
	return steps[0], nil
}

// ParseJob decodes a job. Relative paths are resolved against dir.
func ParseJob(data []byte, dir string) (*Job, error) {
	var job Job
	if err := yaml.UnmarshalStrict(data, &job); err != nil {
		return nil, errors.Wrap(err, "job")
	}
	if job.Input == "" {
		return nil, errors.New("job: input is required")
	}
	for _, p := range []*string{&job.Input, &job.Output, &job.Preview} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	for i := range job.Steps {
		if _, err := job.Steps[i].step(); err != nil {
			return nil, errors.Wrapf(err, "step %d", i+1)
		}
	}
	return &job, nil
}

func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return ParseJob(data, filepath.Dir(path))
}

func (j *Job) Run() error {
	m, err := meshio.Load(j.Input)
	if err != nil {
		return err
	}
	log.Printf("%s: %d vertices, %d faces", j.Input, m.NumVertices(), m.NumFaces())
	for i := range j.Steps {
		s, _ := j.Steps[i].step()
		if err := s.apply(m); err != nil {
			return errors.Wrapf(err, "step %d", i+1)
		}
	}
	if j.Output != "" {
		log.Print("out: ", j.Output)
		if err := meshio.Save(m, j.Output); err != nil {
			return err
		}
	}
	if j.Preview != "" {
		log.Print("preview: ", j.Preview)
		return preview.Save(preview.Render(m, nil), j.Preview)
	}
	return nil
}
