// Package selection ranks normalized records into the indexer x horizon grid.
//
// TopN picks the best rates of one bucket, AllBuckets fills all nine, and
// ByTerm lists a horizon by maturity for the public-bond message. Filters
// (RatingFloor, MaxMinInvestment) are applied to the records before ranking.
package selection
