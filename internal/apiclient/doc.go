// Package apiclient is the typed client for the backend REST API.
//
// One file per resource: auth, people, companies, galleries, images, pages,
// users, accounts. Non-2xx responses surface as *APIError carrying the
// status and the backend's detail string.
package apiclient
