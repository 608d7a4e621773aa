// Package iosubmit reads batches of submissions from YAML files.
//
// A batch may set dataset, project and reference once at the top. They
// are used by every submission that leaves the corresponding section
// empty:
//
//	dataset:
//	  name: Freshwater fish
//	  organization: NINA
//	submissions:
//	  - location:
//	      point: {x: 10.75, y: 59.91}
//	    event:
//	      date_start: 2023-06-01
//	    occurrences:
//	      - taxon: Salmo trutta
package iosubmit

import (
	"bytes"
	"errors"
	"io"

	"github.com/gnames/gnocc/internal/iofs"
	"github.com/gnames/gnocc/pkg/occur"
	"gopkg.in/yaml.v3"
)

// Batch is the content of a submission file.
type Batch struct {
	Dataset     occur.Dataset      `yaml:"dataset"`
	Project     occur.Project      `yaml:"project"`
	Reference   occur.Reference    `yaml:"reference"`
	Submissions []occur.Submission `yaml:"submissions"`
}

// Read loads a submission file.
func Read(path string) ([]occur.Submission, error) {
	data, err := iofs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	res, err := Parse(data)
	if err != nil {
		return nil, SubmitFileError(path, err)
	}
	return res, nil
}

// Parse decodes a batch and fills in the shared sections. Unknown keys
// are errors, so typos in field names do not go unnoticed.
func Parse(data []byte) ([]occur.Submission, error) {
	var b Batch
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, err
	}
	if len(b.Submissions) == 0 {
		return nil, errors.New("no submissions found")
	}

	res := make([]occur.Submission, len(b.Submissions))
	for i, s := range b.Submissions {
		if s.Dataset == (occur.Dataset{}) {
			s.Dataset = b.Dataset
		}
		if s.Project == (occur.Project{}) {
			s.Project = b.Project
		}
		if s.Reference == (occur.Reference{}) {
			s.Reference = b.Reference
		}
		res[i] = s
	}
	return res, nil
}
