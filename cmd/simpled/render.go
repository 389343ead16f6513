package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"gopkg.in/yaml.v3"

	"github.com/artpar/simpled/internal/core/spec"
)

// =============================================================================
// Output Formats
// =============================================================================

const (
	outputTable = "table"
	outputYAML  = "yaml"
	outputJSON  = "json"

	secretMask = "********"
)

type renderFunc func(w io.Writer, resolved *spec.EnvironmentResolvedSpec, showSecrets bool) error

func renderer(format string) (renderFunc, error) {
	switch strings.ToLower(format) {
	case outputTable:
		return renderTable, nil
	case outputYAML:
		return renderYAML, nil
	case outputJSON:
		return renderJSON, nil
	}
	return nil, fmt.Errorf("unknown output format %q, expected one of: table, yaml, json", format)
}

// resolvedOutput is the printable form of a resolved deployment. Config
// contents are reduced to sizes and secret values are masked on request.
type resolvedOutput struct {
	Type       spec.EnvType         `json:"type" yaml:"type"`
	Ingress    spec.ResolvedIngress `json:"ingress" yaml:"ingress"`
	Deployment deploymentOutput     `json:"deployment" yaml:"deployment"`
}

type deploymentOutput struct {
	Name        string                 `json:"name" yaml:"name"`
	Application string                 `json:"application" yaml:"application"`
	Version     string                 `json:"version" yaml:"version"`
	Configs     []configOutput         `json:"configs" yaml:"configs"`
	Secrets     []spec.ResolvedSecret  `json:"secrets" yaml:"secrets"`
	Defaults    spec.Resources         `json:"defaults" yaml:"defaults"`
	Services    []spec.ResolvedService `json:"services" yaml:"services"`
}

type configOutput struct {
	Name  string       `json:"name" yaml:"name"`
	Files []fileOutput `json:"files" yaml:"files"`
}

type fileOutput struct {
	Name string `json:"name" yaml:"name"`
	Size int    `json:"size" yaml:"size"`
}

func newResolvedOutput(r *spec.EnvironmentResolvedSpec, showSecrets bool) resolvedOutput {
	d := r.Deployment
	out := resolvedOutput{
		Type:    r.Type,
		Ingress: r.Ingress,
		Deployment: deploymentOutput{
			Name:        d.Name,
			Application: d.Application,
			Version:     d.Version,
			Configs:     make([]configOutput, 0, len(d.Configs)),
			Secrets:     make([]spec.ResolvedSecret, 0, len(d.Secrets)),
			Defaults:    d.Defaults,
			Services:    d.Services,
		},
	}
	for _, c := range d.Configs {
		co := configOutput{Name: c.Name, Files: make([]fileOutput, 0, len(c.Files))}
		for _, f := range c.Files {
			co.Files = append(co.Files, fileOutput{Name: f.Name, Size: len(f.Content)})
		}
		out.Deployment.Configs = append(out.Deployment.Configs, co)
	}
	for _, s := range d.Secrets {
		out.Deployment.Secrets = append(out.Deployment.Secrets, spec.ResolvedSecret{Name: s.Name, Value: secretValue(s.Value, showSecrets)})
	}
	return out
}

func secretValue(value string, show bool) string {
	if show {
		return value
	}
	return secretMask
}

// =============================================================================
// Renderers
// =============================================================================

func renderJSON(w io.Writer, r *spec.EnvironmentResolvedSpec, showSecrets bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newResolvedOutput(r, showSecrets))
}

func renderYAML(w io.Writer, r *spec.EnvironmentResolvedSpec, showSecrets bool) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newResolvedOutput(r, showSecrets)); err != nil {
		return err
	}
	return enc.Close()
}

func renderTable(w io.Writer, r *spec.EnvironmentResolvedSpec, showSecrets bool) error {
	d := r.Deployment
	heading := color.New(color.FgBlue, color.Bold).SprintFunc()
	headerFmt := color.New(color.FgGreen, color.Bold).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	newTable := func(columns ...any) table.Table {
		return table.New(columns...).
			WithWriter(w).
			WithHeaderFormatter(headerFmt).
			WithFirstColumnFormatter(columnFmt)
	}

	fmt.Fprintf(w, "%s %s: %s %s on %s\n", heading("Deployment"), d.Name, d.Application, d.Version, envLabel(r.Type))

	fmt.Fprintln(w, "\n"+heading("Services"))
	services := newTable("Service", "Type", "Image", "Host", "Ports", "Replicas", "CPU", "Memory")
	for _, s := range d.Services {
		services.AddRow(s.FullName, s.Type, s.Image, s.HostDomain, joinPorts(s.Ports),
			s.Resources.Replicas, s.Resources.Limits.CPU, s.Resources.Limits.Memory)
	}
	services.Print()

	if len(r.Ingress.Rules) > 0 {
		fmt.Fprintln(w, "\n"+heading("Routes"))
		routes := newTable("Domain", "Prefix", "Service", "Port", "Strip")
		for _, rule := range r.Ingress.Rules {
			for _, route := range rule.Routes {
				routes.AddRow(rule.Domain, route.Prefix, route.Service, route.Port, route.StripPrefix)
			}
		}
		routes.Print()
	}

	if len(d.Configs) > 0 {
		fmt.Fprintln(w, "\n"+heading("Configs"))
		configs := newTable("Config", "File", "Size")
		for _, c := range d.Configs {
			for _, f := range c.Files {
				configs.AddRow(c.Name, f.Name, len(f.Content))
			}
		}
		configs.Print()
	}

	if len(d.Secrets) > 0 {
		fmt.Fprintln(w, "\n"+heading("Secrets"))
		secrets := newTable("Secret", "Value")
		for _, s := range d.Secrets {
			secrets.AddRow(s.Name, secretValue(s.Value, showSecrets))
		}
		secrets.Print()
	}
	return nil
}

func envLabel(t spec.EnvType) string {
	if t.Kind != spec.EnvDocker {
		return t.Kind.String()
	}
	label := t.Kind.String() + "/" + t.Ingress.String()
	if t.Swarm {
		label += " (swarm)"
	}
	return label
}

func joinPorts(ports []spec.Port) string {
	parts := make([]string, 0, len(ports))
	for _, p := range ports {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, ", ")
}
