// Package detection finds UI components in a raster screenshot.
//
// A detection pass runs four stages:
//
//  1. Extract: an Extractor turns the buffer into candidate Regions
//  2. Measure: a Measurer samples colors, text presence, corner radius,
//     padding and border for each region
//  3. Classify: a rule chain assigns a Type and a confidence score
//  4. Estimate: hover and active colors are derived for interactive types
//
// # Strategies
//
// Two extraction strategies are available and each comes with its own
// classifier thresholds:
//
//   - StrategyEdge: Sobel edges grouped by 4-connected flood fill. Its
//     classifier uses text presence and falls back to TypeUnknown.
//   - StrategySimilarity: rectangles grown from a seed grid over similar
//     colors. Its classifier is geometry only and falls back to TypeContainer.
//
// # Known Approximations
//
// Right and bottom padding mirror the top padding. The shadow is always the
// fixed DefaultShadow. A component's border is judged from its top edge only.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
package detection
