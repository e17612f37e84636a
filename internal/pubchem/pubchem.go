// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubchem resolves CAS registry numbers to SMILES strings through the
// PubChem PUG REST service. A lookup never fails past Resolve: transport and
// service errors come back as types.Result values.
package pubchem

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pdiddy/cas2smiles/internal/httputil"
	"github.com/pdiddy/cas2smiles/pkg/types"
)

const (
	// DefaultBaseURL is the PUG REST root.
	DefaultBaseURL = "https://pubchem.ncbi.nlm.nih.gov/rest/pug"

	// DefaultDelay keeps consecutive lookups under five requests per second.
	DefaultDelay = 200 * time.Millisecond

	// DefaultUserAgent is sent when the config leaves UserAgent empty.
	DefaultUserAgent = "cas2smiles/0.1"
)

// Response field paths. PubChem answers an IsomericSMILES request with the
// SMILES key on current deployments, so both are read.
const (
	isomericSMILESPath = "PropertyTable.Properties.0.IsomericSMILES"
	smilesPath         = "PropertyTable.Properties.0.SMILES"
)

// Resolver looks up one CAS number at a time. It holds no per-lookup state.
type Resolver struct {
	client *http.Client
	cfg    types.LookupConfig
	logger *slog.Logger
}

// NewResolver returns a Resolver using client for requests. Empty config
// fields take their defaults. A nil client gets one with cfg.Timeout; zero
// leaves the request unbounded, as http.Client does.
func NewResolver(client *http.Client, cfg types.LookupConfig) *Resolver {
	cfg = WithDefaults(cfg)
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Resolver{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "pubchem"),
	}
}

// WithDefaults fills empty lookup settings. Timeout and Delay are left
// alone: zero means no limit and no pause.
func WithDefaults(cfg types.LookupConfig) types.LookupConfig {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return cfg
}

// PropertyURL builds the isomeric SMILES property request for cas, treating
// the CAS number as a compound name.
func PropertyURL(baseURL, cas string) string {
	return strings.TrimSuffix(baseURL, "/") +
		"/compound/name/" + url.PathEscape(cas) +
		"/property/IsomericSMILES/JSON"
}

// Resolve fetches the isomeric SMILES for cas. It makes exactly one request.
// Any non-2xx answer, including PubChem's 404 for an unknown name, is a
// NetworkError carrying the status; NotFound is reserved for a successful
// response without a SMILES value.
func (r *Resolver) Resolve(ctx context.Context, cas string) types.Result {
	reqURL := PropertyURL(r.cfg.BaseURL, cas)
	start := time.Now()

	body, err := httputil.Fetch(ctx, r.client, reqURL, r.cfg.UserAgent, "application/json")
	r.logger.Debug("lookup", "cas", cas, "url", reqURL, "elapsed", time.Since(start), "error", err)
	if err != nil {
		return types.NetworkError(err.Error())
	}

	return parseProperties(body)
}

// parseProperties extracts the SMILES value from a successful response body.
func parseProperties(body []byte) types.Result {
	if !gjson.ValidBytes(body) {
		return types.NetworkError("invalid JSON response")
	}

	for _, path := range []string{isomericSMILESPath, smilesPath} {
		v := gjson.GetBytes(body, path)
		if v.Type == gjson.String && v.Str != "" {
			return types.Found(v.Str)
		}
	}
	return types.NotFound()
}
