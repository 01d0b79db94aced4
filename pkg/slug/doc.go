// Package slug turns arbitrary strings into URL path segments.
//
// Bundles derive the path their static folder is served under from their
// name, so "Admin Bundle" serves its assets at /admin-bundle/static.
//
//	slug.Make("Café & Restaurant")                 // "cafe-restaurant"
//	slug.Make("Product Name", slug.Separator("_")) // "product_name"
//	slug.Make("Very long title", slug.MaxLength(9)) // "very-long"
//
// Diacritics are removed through Unicode decomposition, and letters without
// one (ß, ł, ø) are mapped to ASCII. Other scripts become separators.
//
// WithSuffix, MinLength and ReservedSlugs append a random alphanumeric suffix,
// so their output is not deterministic.
package slug
