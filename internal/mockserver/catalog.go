package mockserver

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// The synthetic dataset served by the toolchain mock. Hashes are not
// per-release in the real service, but a flat tuple set keeps assertions
// simple.
var (
	// Platforms are the operating systems the catalog covers.
	Platforms = []string{"linux", "darwin"}
	// ToolNames are the binaries published per platform and release.
	ToolNames = []string{"oasis", "oasis-chain"}
	// Releases pairs each release segment with its fake content hash.
	// "current" and "cache" use bare keys; named versions live under
	// a release/ prefix.
	Releases = []Release{
		{Name: "19.20", Hash: "abcdef0"},
		{Name: "20.19", Hash: "0fedcba"},
		{Name: "current", Hash: "1111111"},
		{Name: "cache", Hash: "2222222"},
	}

	// extraKeys appear in the listing but are never fetchable tool objects.
	extraKeys = []string{"successful_builds", "some_other_file"}
)

// Release is one named toolchain release in the catalog.
type Release struct {
	Name string
	Hash string
}

// Object identifies a fetchable toolchain artifact.
type Object struct {
	Platform string
	Release  string
	Tool     string
	Hash     string
}

// UpstreamHost is the production host the tools server emulates.
const UpstreamHost = "tools.oasis.dev"

type listBucketResult struct {
	XMLName     xml.Name       `xml:"ListBucketResult"`
	Xmlns       string         `xml:"xmlns,attr"`
	Name        string         `xml:"Name"`
	Prefix      string         `xml:"Prefix"`
	Marker      string         `xml:"Marker"`
	MaxKeys     int            `xml:"MaxKeys"`
	IsTruncated bool           `xml:"IsTruncated"`
	Contents    []bucketObject `xml:"Contents"`
}

type bucketObject struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         int    `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
}

// CatalogKeys returns every object key in the fixed catalog, in listing
// order: tool objects first, then the non-tool extras.
func CatalogKeys() []string {
	var keys []string
	for _, platform := range Platforms {
		for _, release := range Releases {
			segment := release.Name
			if !bareRelease(release.Name) {
				segment = "release/" + release.Name
			}
			for _, tool := range ToolNames {
				keys = append(keys, fmt.Sprintf("%s/%s/%s-%s", platform, segment, tool, release.Hash))
			}
		}
	}
	return append(keys, extraKeys...)
}

// Listing renders the fixed catalog as an S3-style bucket listing document.
func Listing() ([]byte, error) {
	result := listBucketResult{
		Xmlns:   "http://s3.amazonaws.com/doc/2006-03-01/",
		Name:    UpstreamHost,
		MaxKeys: 1000,
	}
	for _, key := range CatalogKeys() {
		result.Contents = append(result.Contents, bucketObject{
			Key:          key,
			LastModified: "2019-08-05T23:59:16.000Z",
			ETag:         `"94e8c8b44d7aa60920f01f9f1e354fa2-2"`,
			Size:         42,
			StorageClass: "STANDARD",
		})
	}

	data, err := xml.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshaling bucket listing: %w", err)
	}
	return data, nil
}

// Lookup resolves a request path to a catalog object. The path shape is
// decomposed by segment count: 4 segments denote a versioned release object
// (platform/release/<version>/<tool>-<hash>), 3 segments the current/cache
// object. Any other shape, a tool-hash segment without a hyphen, or a tuple
// outside the catalog is not found — a normal protocol outcome, not an
// error.
func Lookup(path string) (Object, bool) {
	segments := strings.Split(strings.Trim(path, "/"), "/")

	var platform, release, toolHash string
	switch len(segments) {
	case 4:
		if segments[1] != "release" {
			return Object{}, false
		}
		platform, release, toolHash = segments[0], segments[2], segments[3]
	case 3:
		platform, release, toolHash = segments[0], segments[1], segments[2]
		if !bareRelease(release) {
			return Object{}, false
		}
	default:
		return Object{}, false
	}

	// The hash is everything after the last hyphen.
	cut := strings.LastIndex(toolHash, "-")
	if cut < 0 {
		return Object{}, false
	}
	tool, hash := toolHash[:cut], toolHash[cut+1:]

	if !contains(Platforms, platform) || !contains(ToolNames, tool) || !validRelease(release, hash) {
		return Object{}, false
	}

	return Object{Platform: platform, Release: release, Tool: tool, Hash: hash}, true
}

func bareRelease(name string) bool {
	return name == "current" || name == "cache"
}

func validRelease(name, hash string) bool {
	for _, r := range Releases {
		if r.Name == name && r.Hash == hash {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
