package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/optora/internal/catalog"
	catalogdomain "github.com/smallbiznis/optora/internal/catalog/domain"
	"github.com/smallbiznis/optora/internal/categorydiscount"
	catdiscdomain "github.com/smallbiznis/optora/internal/categorydiscount/domain"
	"github.com/smallbiznis/optora/internal/clock"
	"github.com/smallbiznis/optora/internal/combo"
	combodomain "github.com/smallbiznis/optora/internal/combo/domain"
	"github.com/smallbiznis/optora/internal/config"
	"github.com/smallbiznis/optora/internal/coupon"
	coupondomain "github.com/smallbiznis/optora/internal/coupon/domain"
	"github.com/smallbiznis/optora/internal/lock"
	"github.com/smallbiznis/optora/internal/observability"
	obsmiddleware "github.com/smallbiznis/optora/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/optora/internal/observability/metrics"
	"github.com/smallbiznis/optora/internal/offer"
	offerdomain "github.com/smallbiznis/optora/internal/offer/domain"
	"github.com/smallbiznis/optora/internal/offerrule"
	offerruledomain "github.com/smallbiznis/optora/internal/offerrule/domain"
	"github.com/smallbiznis/optora/internal/reward"
	rewarddomain "github.com/smallbiznis/optora/internal/reward/domain"
	"github.com/smallbiznis/optora/internal/ruleset"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	observability.Module,
	clock.Module,
	lock.Module,
	fx.Provide(registerGin),
	catalog.Module,
	categorydiscount.Module,
	coupon.Module,
	combo.Module,
	offerrule.Module,
	reward.Module,
	ruleset.Module,
	offer.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Log:             log,
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	clock        clock.Clock
	defaultOrgID snowflake.ID

	catalogSvc  catalogdomain.Service
	catDiscSvc  catdiscdomain.Service
	couponSvc   coupondomain.Service
	comboSvc    combodomain.Service
	ruleSvc     offerruledomain.Service
	rewardSvc   rewarddomain.Service
	offerSvc    offerdomain.Service
	ruleLoader  ruleset.Loader
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	Clock      clock.Clock
	CatalogSvc catalogdomain.Service
	CatDiscSvc catdiscdomain.Service
	CouponSvc  coupondomain.Service
	ComboSvc   combodomain.Service
	RuleSvc    offerruledomain.Service
	RewardSvc  rewarddomain.Service
	OfferSvc   offerdomain.Service
	RuleLoader ruleset.Loader
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		clock:        p.Clock,
		defaultOrgID: snowflake.ParseInt64(p.Cfg.DefaultOrgID),
		catalogSvc:   p.CatalogSvc,
		catDiscSvc:   p.CatDiscSvc,
		couponSvc:    p.CouponSvc,
		comboSvc:     p.ComboSvc,
		ruleSvc:      p.RuleSvc,
		rewardSvc:    p.RewardSvc,
		offerSvc:     p.OfferSvc,
		ruleLoader:   p.RuleLoader,
	}

	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.OrgContext())

	// -------- Offers --------
	api.POST("/offers/calculate", s.CalculateOffer)
	api.POST("/offers/checkout", s.CheckoutOffer)

	// -------- Coupons --------
	api.GET("/coupons/:code/validate", s.ValidateCoupon)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.OrgContext())

	// -------- Catalog --------
	admin.GET("/brands", s.ListBrands)
	admin.POST("/brands", s.CreateBrand)
	admin.GET("/lenses", s.ListLenses)
	admin.POST("/lenses", s.CreateLens)
	admin.GET("/lenses/:id/bands", s.ListBandPricing)
	admin.POST("/lenses/:id/bands", s.CreateBandPricing)
	admin.GET("/lenses/:id/addons", s.ListAddOnPricing)
	admin.POST("/lenses/:id/addons", s.CreateAddOnPricing)

	// -------- Category discounts --------
	admin.GET("/category_discounts", s.ListCategoryDiscounts)
	admin.POST("/category_discounts", s.CreateCategoryDiscount)
	admin.DELETE("/category_discounts/:id", s.DeactivateCategoryDiscount)

	// -------- Coupons --------
	admin.GET("/coupons", s.ListCoupons)
	admin.POST("/coupons", s.CreateCoupon)

	// -------- Combo tiers --------
	admin.GET("/combos", s.ListCombos)
	admin.POST("/combos", s.CreateCombo)
	admin.DELETE("/combos/:code", s.DeactivateCombo)

	// -------- Offer rules --------
	admin.GET("/offer_rules", s.ListOfferRules)
	admin.POST("/offer_rules", s.CreateOfferRule)
	admin.GET("/stores/:storeId/offer_rules", s.ListStoreActivations)
	admin.PUT("/stores/:storeId/offer_rules", s.SetStoreActivation)

	// -------- Rewards --------
	admin.GET("/reward_thresholds", s.ListRewardThresholds)
	admin.POST("/reward_thresholds", s.CreateRewardThreshold)
	admin.DELETE("/reward_thresholds/:id", s.DeactivateRewardThreshold)

	// -------- Simulator --------
	admin.POST("/offers/simulate", s.CalculateOffer)
}
