package compose

import (
	"context"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// Load parses generated compose YAML back into a project. It runs the
// compose-go schema validation and consistency checks without touching the
// filesystem, so exported files can be verified before they are written.
func Load(ctx context.Context, content []byte, projectName string) (*types.Project, error) {
	if strings.TrimSpace(string(content)) == "" {
		return nil, NewFieldError("", "compose file is empty", ErrInvalidProject)
	}

	var dict map[string]any
	if err := yaml.Unmarshal(content, &dict); err != nil || dict == nil {
		return nil, NewFieldError("", "invalid YAML syntax", ErrInvalidProject)
	}

	project, err := loader.LoadWithContext(ctx, types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Filename: ComposeFile,
				Content:  content,
				Config:   dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName(projectName, false)
		opts.SkipNormalization = true
		opts.SkipExtends = true
		opts.ResolvePaths = false
	})
	if err != nil {
		return nil, NewFieldError("", err.Error(), ErrInvalidProject)
	}
	return project, nil
}
