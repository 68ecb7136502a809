// capcheck runs a mobile capacity analysis over CSV inputs and writes
// the buffer/ring layers as GeoJSON and the point verdicts as CSV.
package main

import (
	ms "github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/wiless/capacity"
	"github.com/wiless/capacity/entities"
	"github.com/wiless/capacity/itu"
	"github.com/wiless/capacity/radio"
	"github.com/wiless/capacity/visibility"
)

// appConfig is the run configuration read from capcheck.yaml (or any
// format viper understands) in the input directory.
type appConfig struct {
	Radio radio.Params `mapstructure:",squash"`

	CountryCode string `mapstructure:"country_code"`

	POIFile        string `mapstructure:"poi_csv"`
	CellSiteFile   string `mapstructure:"cellsites_csv"`
	PopulationFile string `mapstructure:"population_csv"`
	VisibilityFile string `mapstructure:"visibility_csv"` // optional, switches to precomputed mode
	AreaFile       string `mapstructure:"area_csv"`       // optional boundary ring (lon,lat)

	BwDistanceFile string `mapstructure:"bwdistance_csv"`
	BwBitrateFile  string `mapstructure:"bwdlachievbr_csv"`
	SubscrFile     string `mapstructure:"mbbsubscr_csv"`
	TrafficFile    string `mapstructure:"mbbtraffic_csv"`

	OutDir   string `mapstructure:"out_dir"`
	Workers  int    `mapstructure:"workers"`
	Progress bool   `mapstructure:"progress"`
	Verbose  bool   `mapstructure:"verbose"`
}

func readAppConfig(indir string) (appConfig, error) {
	viper.AddConfigPath(indir)
	viper.SetConfigName("capcheck")

	viper.SetDefault("sectors_per_site", 3)
	viper.SetDefault("rb_num_multiplier", 5)
	viper.SetDefault("angles_num", 360)
	viper.SetDefault("rotation_angle", 0)
	viper.SetDefault("nbhours", 10)
	viper.SetDefault("oppopshare", 50)
	viper.SetDefault("out_dir", ".")
	viper.SetDefault("workers", 1)
	viper.SetDefault("progress", true)

	var cfg appConfig
	if err := viper.ReadInConfig(); err != nil {
		return cfg, err
	}
	if err := ms.Decode(viper.AllSettings(), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	indir := "."
	cfg, err := readAppConfig(indir)
	if err != nil {
		log.Fatalf("capcheck: reading configuration: %v", err)
	}
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	a := capacity.NewAnalyzer()
	a.Params = cfg.Radio
	a.Workers = cfg.Workers
	a.ShowProgress = cfg.Progress
	a.CountryISO3 = cfg.CountryCode
	a.Observer = func(stage string) { log.Infof("capcheck: stage %s", stage) }

	a.Tables, err = radio.LoadBandTables(cfg.BwDistanceFile, cfg.BwBitrateFile)
	if err != nil {
		log.Fatal(err)
	}
	a.Reference, err = itu.Load(cfg.SubscrFile, cfg.TrafficFile)
	if err != nil {
		log.Fatal(err)
	}
	a.POIs, err = entities.LoadPOIs(cfg.POIFile)
	if err != nil {
		log.Fatal(err)
	}
	a.Sites, err = entities.LoadCellSites(cfg.CellSiteFile)
	if err != nil {
		log.Fatal(err)
	}
	a.Population, err = entities.LoadPopulation(cfg.PopulationFile)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.VisibilityFile != "" {
		a.Pairs, err = entities.LoadVisibilityPairs(cfg.VisibilityFile)
		if err != nil {
			log.Fatal(err)
		}
		log.Infof("capcheck: %d precomputed visibility pairs, oracle disabled", len(a.Pairs.Items))
	} else {
		// No terrain dataset is wired into the binary; without a
		// precomputed table every assigned pair counts as visible at
		// its great-circle distance.
		a.Oracle = visibility.FlatTerrainOracle{}
	}
	if cfg.AreaFile != "" {
		a.Area, err = loadAreaRing(cfg.AreaFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	res, err := a.Run()
	if err != nil {
		log.Fatal(err)
	}

	if err := writeOutputs(cfg.OutDir, res); err != nil {
		log.Fatal(err)
	}
	log.Infof("capcheck: wrote buffers, rings and point table to %s", cfg.OutDir)
}
