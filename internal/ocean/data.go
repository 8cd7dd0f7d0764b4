package ocean

import "bubblevoyage/internal/sim"

func builtinCurrents() []Current {
	return []Current{
		{
			ID:            "gulf_stream",
			Name:          "Gulf Stream",
			Description:   "A warm and swift Atlantic ocean current that originates in the Gulf of Mexico.",
			StartLocation: "Florida, USA",
			EndLocation:   "London, UK",
			Color:         "#FF6B6B",
			AvgTempC:      25,
			AvgSpeedMS:    2.5,
			Path: []GeoPoint{
				{25.0, -80.0}, {30.0, -75.0}, {35.0, -70.0}, {40.0, -60.0},
				{45.0, -45.0}, {50.0, -30.0}, {51.0, -10.0}, {51.5, 0.0},
			},
			Biodiversity: []MarineLife{
				{Name: "Bluefin Tuna", Emoji: "🐟", Depth: "Surface"},
				{Name: "Loggerhead Turtle", Emoji: "🐢", Depth: "20m"},
				{Name: "Flying Fish", Emoji: "🐠", Depth: "Surface"},
			},
			Quizzes: []sim.Quiz{
				{
					ID:       "gulf_1",
					Question: "Is the Gulf Stream warm or cold?",
					Options:  []string{"Warm", "Cold", "Frozen", "Boiling"},
					Correct:  0,
					Fact:     "The Gulf Stream carries warm water from the tropics and keeps western Europe milder than it would be.",
				},
				{
					ID:       "gulf_2",
					Question: "Which ocean does the Gulf Stream flow through?",
					Options:  []string{"Pacific", "Indian", "Atlantic", "Arctic"},
					Correct:  2,
					Fact:     "It flows up the east coast of North America and then across the Atlantic.",
				},
			},
		},
		{
			ID:            "kuroshio",
			Name:          "Kuroshio Current",
			Description:   "Also known as the Black Stream, flowing north-eastward past Japan.",
			StartLocation: "Philippines",
			EndLocation:   "Tokyo, Japan",
			Color:         "#4ECDC4",
			AvgTempC:      24,
			AvgSpeedMS:    1.5,
			Path: []GeoPoint{
				{14.0, 121.0}, {20.0, 125.0}, {25.0, 128.0}, {30.0, 135.0}, {35.0, 140.0},
			},
			Biodiversity: []MarineLife{
				{Name: "Coral Reefs", Emoji: "🪸", Depth: "10m"},
				{Name: "Whale Shark", Emoji: "🦈", Depth: "50m"},
				{Name: "Squid", Emoji: "🦑", Depth: "200m"},
			},
			Quizzes: []sim.Quiz{
				{
					ID:       "kuroshio_1",
					Question: "What does \"Kuroshio\" mean in Japanese?",
					Options:  []string{"Red Wave", "Black Stream", "Fast River", "Blue Road"},
					Correct:  1,
					Fact:     "Its deep blue water looks almost black, which is where the name Black Stream comes from.",
				},
				{
					ID:       "kuroshio_2",
					Question: "What is the biggest fish in the sea?",
					Options:  []string{"Tuna", "Swordfish", "Whale Shark", "Clownfish"},
					Correct:  2,
					Fact:     "Whale sharks can grow longer than a bus, yet they only eat tiny plankton.",
				},
			},
		},
		{
			ID:            "humboldt",
			Name:          "Humboldt Current",
			Description:   "A cold, low-salinity ocean current that flows north along the western coast of South America.",
			StartLocation: "Antarctica",
			EndLocation:   "Galapagos Islands",
			Color:         "#45B7D1",
			AvgTempC:      12,
			AvgSpeedMS:    0.8,
			Path: []GeoPoint{
				{-60.0, -70.0}, {-45.0, -75.0}, {-30.0, -78.0}, {-15.0, -80.0}, {-0.9, -90.0},
			},
			Biodiversity: []MarineLife{
				{Name: "Penguin", Emoji: "🐧", Depth: "Surface"},
				{Name: "Anchovy", Emoji: "🐟", Depth: "30m"},
				{Name: "Giant Squid", Emoji: "🦑", Depth: "600m"},
			},
			Quizzes: []sim.Quiz{
				{
					ID:       "humboldt_1",
					Question: "Which bird lives on the Galapagos Islands near the equator?",
					Options:  []string{"Penguin", "Ostrich", "Flamingo", "Owl"},
					Correct:  0,
					Fact:     "The cold Humboldt Current lets Galapagos penguins live almost right on the equator.",
				},
				{
					ID:       "humboldt_2",
					Question: "Why is the Humboldt Current full of fish?",
					Options:  []string{"It is very warm", "Cold water brings up food from the deep", "It has no waves", "Boats feed them"},
					Correct:  1,
					Fact:     "Upwelling lifts nutrient-rich water to the surface, feeding huge schools of anchovies.",
				},
			},
		},
		{
			ID:            "eac",
			Name:          "East Australian Current",
			Description:   "The playground of sea turtles! Flows southward along the east coast of Australia.",
			StartLocation: "Great Barrier Reef",
			EndLocation:   "Sydney, Australia",
			Color:         "#FFE66D",
			AvgTempC:      22,
			AvgSpeedMS:    2.0,
			Path: []GeoPoint{
				{-15.0, 145.0}, {-20.0, 150.0}, {-25.0, 153.0}, {-30.0, 155.0}, {-34.0, 151.0},
			},
			Biodiversity: []MarineLife{
				{Name: "Clownfish", Emoji: "🐠", Depth: "10m"},
				{Name: "Sea Turtle", Emoji: "🐢", Depth: "30m"},
				{Name: "Great White Shark", Emoji: "🦈", Depth: "100m"},
			},
			Quizzes: []sim.Quiz{
				{
					ID:       "eac_1",
					Question: "Which animals ride the East Australian Current?",
					Options:  []string{"Camels", "Sea Turtles", "Polar Bears", "Horses"},
					Correct:  1,
					Fact:     "Young sea turtles hitch a ride south on the current, just like in the movies.",
				},
				{
					ID:       "eac_2",
					Question: "What is the biggest coral reef in the world?",
					Options:  []string{"Red Sea Reef", "Belize Reef", "Great Barrier Reef", "Coral Castle"},
					Correct:  2,
					Fact:     "The Great Barrier Reef is so big it can be seen from space.",
				},
			},
		},
	}
}
