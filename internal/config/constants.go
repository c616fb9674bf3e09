package config

// Application constants for the port sampling supervision pipeline
const (
	// Application Info
	AppName    = "Port Sampler"
	AppVersion = "1.2.0"

	// Workbook layout
	DefaultSheetName = "RawData"

	// Column headers as they appear in the uploaded workbook
	ColumnAddedTime   = "Added Time"
	ColumnBagID       = "BAG ID."
	ColumnSealNo      = "AHK SEAL NO."
	ColumnGrossWeight = "WAREHOUSE PLATFORM SCALE GROSS WEIGHT (KG)"
	ColumnSampling    = "SAMPLING TIME"

	// Derived columns
	ColumnScanned = "Bag Scanned & Manual"

	// Sub-fields extracted from composite bag identifiers
	BagFieldBag  = "Bag"
	BagFieldSeal = "Seal"
	BagFieldLot  = "Lot"

	// A raw bag identifier longer than this is scanner-generated and carries the
	// true short code in its Bag sub-field.
	ScannedIDMaxRawLen = 20

	// Raw identifiers whose length falls in this inclusive band are treated as
	// partially scanned and reported in the length exception table.
	LengthAnomalyMin = 16
	LengthAnomalyMax = 25

	// Export
	ExportFileName       = "mapped_combined_df_for_download.csv"
	ExportTimezoneSuffix = "+02:00"

	// Timestamp rendering for display and grouped duplicate values
	TimestampLayout = "2006-01-02 15:04:05"
)
