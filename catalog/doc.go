// Package catalog declares the marketplace data shapes shared by the
// customer-facing flows: service and vehicle descriptors, service requests
// and their status lifecycle, workshop and technician listings, price
// estimations, and promos. The package holds declarations and structural
// validation only; request routing and pricing live on the platform side.
package catalog
