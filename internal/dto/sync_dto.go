package dto

// ImportRunResult summarizes one bounded full-import run.
type ImportRunResult struct {
	StartPage        int  `json:"start_page"`
	PagesProcessed   int  `json:"pages_processed"`
	ProductsUpserted int  `json:"products_upserted"`
	StockApplied     int  `json:"stock_applied"`
	NextPage         int  `json:"next_page"`
	WrappedAround    bool `json:"wrapped_around"`
	Throttled        bool `json:"throttled"`
}

// DeltaSyncResult summarizes one incremental stock-sync run.
type DeltaSyncResult struct {
	Watermark       string `json:"watermark"`
	NewWatermark    string `json:"new_watermark"`
	ChangedProducts int    `json:"changed_products"`
	StockChanges    int    `json:"stock_changes"`
	SnapshotsTaken  int    `json:"snapshots_taken"`
	Throttled       bool   `json:"throttled"`
}

// FallbackSyncResult summarizes one page-walking stock-sync run.
type FallbackSyncResult struct {
	StartPage      int  `json:"start_page"`
	PagesProcessed int  `json:"pages_processed"`
	StockApplied   int  `json:"stock_applied"`
	NextPage       int  `json:"next_page"`
	WrappedAround  bool `json:"wrapped_around"`
	Throttled      bool `json:"throttled"`
}

// VectorizeResult summarizes one vectorization batch.
type VectorizeResult struct {
	Scanned  int `json:"scanned"`
	Embedded int `json:"embedded"`
	Skipped  int `json:"skipped"`
}
