// Package knnvote is the embeddable Go API of the knnvote classifier.
//
// # Generic API: any object type, caller-supplied metric
//
//	fractions, err := knnvote.Classify(3, 2, samples, classes, query, distance)
//	_ = knnvote.Report(os.Stdout, []string{"defect", "normal"}, fractions)
//
// # Dataset API: named vector datasets, optional Valkey/Redis result cache
//
//	client, _ := knnvote.New(ctx,
//	    knnvote.WithBuiltinDatasets(),
//	    knnvote.WithDatasetFiles("data/fruit.toml"),
//	    knnvote.WithValkey("localhost:6379", ""),
//	)
//	defer client.Close()
//	res, _ := client.Classify(ctx, "fruit", []float64{150, 7.5}, knnvote.WithK(3))
//	fmt.Println(res.Predicted)
package knnvote
