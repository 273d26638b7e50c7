/*
Package filesystem provides the instrumented file operations the gallery
uses to manage its upload and image directories.

# Purpose

Every operation that touches the data directory goes through this package
so that its latency and failures show up in the filesystem metrics, labeled
by volume ("uploads" or "images"). There is no retry logic: the data
directory is local disk and a failure is reported to the caller as is.

# Containment

JoinWithinRoot is the single place where untrusted names (group names from
the grouping XML, path segments from image URLs) are turned into paths. It
rejects anything that resolves outside the root:

	dir, err := filesystem.JoinWithinRoot(imageRoot, groupName)
	if errors.Is(err, filesystem.ErrPathEscape) {
	    // refuse
	}

Group directories use the stricter ChildDir, which also refuses names that
resolve to the root itself or are not a single path element. The importer
and the gallery engine both go through it, so a group the importer skips is
never listed.

# Metrics

The package never imports metrics directly. At startup:

	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{
	    "uploads": cfg.UploadDir,
	    "images":  cfg.ImageDir,
	}))
	filesystem.SetObserver(metrics.NewFilesystemObserver())

With no observer set, operations run without recording anything, which is
what tests rely on.
*/
package filesystem
