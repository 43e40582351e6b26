// Package services implements the business logic layer between the
// transports (HTTP, CLI) and the pipeline packages.
//
// DestaquesService turns one workbook into a Result: it reads the
// bank-credit sheet (required) and the public-bond sheet (optional),
// normalizes rows, applies the rating and minimum-investment filters,
// ranks the 3x3 grid and renders previews and messages. Results are
// memoized by input hash, options and reference date.
//
// DispatchService fans a Result's messages out to the configured WhatsApp
// groups, and HealthService reports readiness.
//
//	svc := services.NewDestaquesService(cfg, metrics, logger)
//	res, err := svc.Process(ctx, data, svc.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	summary, err := dispatch.Send(ctx, res.Messages)
package services
