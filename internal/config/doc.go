// Package config provides configuration management for jiraview.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. A YAML configuration file
//  3. Default values (lowest priority)
//
// The file is taken from JIRAVIEW_CONFIG or, failing that, the first of
// config.yaml, configs/config.yaml and ../configs/config.yaml that exists.
//
// # Environment Variables
//
// Variables are namespaced JIRAVIEW_<SECTION>_<FIELD>:
//
//	JIRAVIEW_SERVER_PORT=8080
//	JIRAVIEW_STORAGE_DRIVER=sqlite
//	JIRAVIEW_TABLE_PAGE_SIZE=100
//	JIRAVIEW_TABLE_YEAR_PIVOT=30
//	JIRAVIEW_TABLE_QUICK_COLUMNS=Area,Prioridad,Estado
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sess := session.New(cfg.SessionOptions(), st, logger)
package config
