// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/AleutianAI/StreamlitLike/services/webapp/handlers"
	"github.com/AleutianAI/StreamlitLike/services/webapp/middleware"
	"github.com/AleutianAI/StreamlitLike/services/webapp/session"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries what SetupRoutes needs beyond the router.
type Options struct {
	Registry *session.Registry
	Session  middleware.SessionOptions

	// Gatherer backs /metrics. Nil leaves /metrics unmounted.
	Gatherer prometheus.Gatherer
}

func SetupRoutes(router *gin.Engine, opts Options) {
	router.NoRoute(handlers.NotFound)
	router.GET("/health", handlers.HealthCheck)
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// API version 1 group; every route is bound to a session scope
	v1 := router.Group("/v1")
	v1.Use(middleware.SessionMiddleware(opts.Registry, opts.Session))
	{
		v1.GET("/home", handlers.GetHome)
		v1.GET("/privacy", handlers.GetPrivacy)

		demo := v1.Group("/demo")
		{
			demo.GET("", handlers.GetDemo)
			demo.POST("/user", handlers.SubmitUserData)
			demo.POST("/calculate", handlers.Calculate)
		}

		// State inspection routes
		stateGroup := v1.Group("/state")
		{
			stateGroup.GET("", handlers.GetState)
			stateGroup.GET("/:key", handlers.GetStateKey)
			stateGroup.DELETE("/:key", handlers.DeleteStateKey)
			stateGroup.DELETE("", handlers.ClearState)
		}

		v1.GET("/ws/state", handlers.HandleStateWebSocket)
		v1.DELETE("/session", handlers.EndSession(opts.Registry))
	}
}
