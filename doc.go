// Package pinelocal is a local, single-node stand-in for a managed vector
// database.
//
// A DB owns one data directory. Callers create named indexes with a fixed
// dimension and similarity metric, upsert embedding vectors with optional
// metadata, and run exact top-K similarity queries over them. Every index is
// persisted as plain JSON documents, so a data directory can be inspected and
// edited by hand.
//
// # Quick Start
//
//	ctx := context.Background()
//	db, _ := pinelocal.Open("./data")
//	defer db.Close()
//
//	_, _ = db.CreateIndex(ctx, model.CreateIndexRequest{
//	    Name:      "docs",
//	    Dimension: 3,
//	    Metric:    distance.MetricCosine,
//	    Spec:      model.Spec{Serverless: model.ServerlessSpec{Cloud: "aws", Region: "us-east-1"}},
//	})
//
//	_, _ = db.Upsert(ctx, "docs", []model.Vector{
//	    {ID: "v1", Values: []float64{1, 0, 0}},
//	    {ID: "v2", Values: []float64{0, 1, 0}},
//	})
//
//	resp, _ := db.Query(ctx, "docs", model.QueryRequest{Vector: []float64{1, 0, 0}, TopK: 2})
//	for _, m := range resp.Matches {
//	    fmt.Println(m.ID, m.Score)
//	}
//
// # Data Directory
//
//	<dataDir>/indexes.json          registry: every index definition plus status
//	<dataDir>/<name>/config.json    definition of one index
//	<dataDir>/<name>/vectors.json   {"vectors": [...]} in insertion order
//
// Each document is replaced atomically (temp file, fsync, rename). The
// registry decides which indexes exist; Open removes directories it does not
// list and restores missing config documents.
//
// # Metrics
//
//   - cosine: dot(a,b) / (|a|*|b|), 0 if either vector is all zeros
//   - euclidean: 1 / (1 + |a-b|)
//   - dotproduct: dot(a,b)
//
// Queries scan every stored vector. There is no approximate index.
package pinelocal
