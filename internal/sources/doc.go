// Package sources provides the catalog.Provider implementations that load
// catalog collections from external sources.
//
// Current implementations:
//   - apiProvider: fetches records and caller declarations from the catalog
//     HTTP API and forwards mutations to it
//   - fileProvider: reads a collection from a local YAML or JSON file.
//     Mutations are kept in memory and applied to later reads, the file is
//     never written.
//
// NewProviderFactory creates the provider matching a source configuration.
package sources
