// Package gateway adapts a relational store and a blob store into one
// consistent set of resource operations.
//
// Two resource services sit on top of injected collaborators: NewsService
// manages structured records through a RelationalStore, and ImageService
// manages binary objects through a BlobStore. AuthService checks credentials
// against a pluggable CredentialVerifier. The services hold no state of their
// own; every mutation is a direct call to the backend and is re-read before
// it is reported.
//
// Store implementations live in subpackages (repo/sqlite, repo/postgres,
// storage/memory, storage/fs, storage/s3). The HTTP surface, response
// envelope and middleware live in the api subpackage.
package gateway
