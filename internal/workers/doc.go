/*
Package workers sizes and runs small worker pools.

# Sizing

Worker counts come from GOMAXPROCS rather than runtime.NumCPU, so a
container CPU limit is respected:

	n := workers.ForIO(8) // 2 per CPU, at most 8

COPY_WORKERS pins the count when set to a positive integer. It is still
capped by the limit argument.

# Running

Each fans a fixed number of jobs out over a pool and reports the first error
in job order:

	err := workers.Each(ctx, len(groups), workers.ForIO(8), func(ctx context.Context, i int) error {
	    return copyGroup(ctx, groups[i])
	})

The importer uses it to populate group image directories in parallel.
*/
package workers
