// Package loader reads application and environment descriptors from disk.
//
// Documents are YAML. Each one is checked against an embedded JSON schema,
// decoded with mapping order preserved, and converted into spec package types.
// All file access goes through an afero.Fs so tests run on a memory
// filesystem.
//
// # Functions
//
//   - LoadEnvSpec: Read envspec.yaml from an environment root
//   - LoadAppSpec: Read appspec.yaml from a bundle directory or .tar.gz archive
//
// # Usage
//
//	fs := afero.NewOsFs()
//	env, err := loader.LoadEnvSpec(fs, "./env")
//	if err != nil {
//	    return err
//	}
//	app, err := loader.LoadAppSpec(fs, "./bundle.tar.gz", &env)
//
// Paths inside envspec.yaml are relative to the environment root.
package loader
