// Copyright 2024 The czar Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/lsst/qserv-sub011/internal/sphgeom"
)

// AreaRestrictorKind names the qserv_areaspec_* function a restrictor came
// from.
type AreaRestrictorKind int

const (
	AreaBox AreaRestrictorKind = iota
	AreaCircle
	AreaEllipse
	AreaPoly
)

func (k AreaRestrictorKind) functionName() string {
	switch k {
	case AreaBox:
		return "qserv_areaspec_box"
	case AreaCircle:
		return "qserv_areaspec_circle"
	case AreaEllipse:
		return "qserv_areaspec_ellipse"
	case AreaPoly:
		return "qserv_areaspec_poly"
	default:
		return "qserv_areaspec_unknown"
	}
}

func (k AreaRestrictorKind) sciSQLName() string {
	switch k {
	case AreaBox:
		return "scisql_s2PtInBox"
	case AreaCircle:
		return "scisql_s2PtInCircle"
	case AreaEllipse:
		return "scisql_s2PtInEllipse"
	case AreaPoly:
		return "scisql_s2PtInCPoly"
	default:
		return "scisql_s2PtInUnknown"
	}
}

// AreaRestrictor is a qserv_areaspec_{box,circle,ellipse,poly}(...) clause
// extracted out of a query's WHERE list.
type AreaRestrictor struct {
	Kind   AreaRestrictorKind
	Params []string
}

// SqlFragment reconstructs the original qserv_areaspec_* call, for
// inclusion in debug output or re-display.
func (a AreaRestrictor) SqlFragment() string {
	return fmt.Sprintf("%s(%s)", a.Kind.functionName(), strings.Join(a.Params, ","))
}

// AsSciSQLFactor renders the equivalent scisql_s2PtIn* predicate against
// table's ra/decl columns, suitable for AND-ing into a chunk query's WHERE
// clause.
func (a AreaRestrictor) AsSciSQLFactor(table, raCol, declCol string) string {
	return fmt.Sprintf("%s(%s.%s,%s.%s,%s)=1",
		a.Kind.sciSQLName(), table, raCol, table, declCol, strings.Join(a.Params, ","))
}

// Region builds the sphgeom.Region the restrictor describes, for chunk
// coverage computation.
func (a AreaRestrictor) Region() (sphgeom.Region, error) {
	vals := make([]float64, len(a.Params))
	for i, p := range a.Params {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("session: %s: invalid numeric parameter %q", a.Kind.functionName(), p)
		}
		vals[i] = v
	}
	switch a.Kind {
	case AreaBox:
		if len(vals) != 4 {
			return nil, fmt.Errorf("session: qserv_areaspec_box requires 4 parameters, got %d", len(vals))
		}
		return sphgeom.NewBoxFromDegrees(vals[0], vals[1], vals[2], vals[3]), nil
	case AreaCircle:
		if len(vals) != 3 {
			return nil, fmt.Errorf("session: qserv_areaspec_circle requires 3 parameters, got %d", len(vals))
		}
		center := sphgeom.NewLonLatFromDegrees(vals[0], vals[1]).Vector()
		radius := sphgeom.AngleFromDegrees(vals[2]).Radians()
		squaredChordRadius := 2 - 2*math.Cos(radius)
		return sphgeom.NewCircle(center, squaredChordRadius), nil
	case AreaEllipse:
		if len(vals) != 5 {
			return nil, fmt.Errorf("session: qserv_areaspec_ellipse requires 5 parameters, got %d", len(vals))
		}
		center := sphgeom.NewLonLatFromDegrees(vals[0], vals[1]).Vector()
		semiMajor := sphgeom.AngleFromDegrees(vals[2])
		semiMinor := sphgeom.AngleFromDegrees(vals[3])
		orientation := sphgeom.AngleFromDegrees(vals[4])
		return sphgeom.NewEllipse(center, semiMajor, semiMinor, orientation)
	case AreaPoly:
		if len(vals) < 6 || len(vals)%2 != 0 {
			return nil, fmt.Errorf("session: qserv_areaspec_poly requires an even number (>=6) of parameters, got %d", len(vals))
		}
		verts := make([]sphgeom.UnitVector3d, len(vals)/2)
		for i := range verts {
			verts[i] = sphgeom.NewLonLatFromDegrees(vals[2*i], vals[2*i+1]).Vector()
		}
		return sphgeom.NewConvexPolygon(verts)
	default:
		return nil, fmt.Errorf("session: unknown area restrictor kind")
	}
}

var areaspecRE = regexp.MustCompile(`(?i)^qserv_areaspec_(box|circle|ellipse|poly)\s*\(([^)]*)\)$`)

// matchAreaRestrictor recognizes a single WHERE conjunct as a
// qserv_areaspec_* call, returning ok=false if it is not one.
func matchAreaRestrictor(conjunct string) (AreaRestrictor, bool) {
	m := areaspecRE.FindStringSubmatch(strings.TrimSpace(conjunct))
	if m == nil {
		return AreaRestrictor{}, false
	}
	var kind AreaRestrictorKind
	switch strings.ToLower(m[1]) {
	case "box":
		kind = AreaBox
	case "circle":
		kind = AreaCircle
	case "ellipse":
		kind = AreaEllipse
	case "poly":
		kind = AreaPoly
	}
	var params []string
	for _, p := range strings.Split(m[2], ",") {
		params = append(params, strings.TrimSpace(p))
	}
	return AreaRestrictor{Kind: kind, Params: params}, true
}

var secIdxRE = regexp.MustCompile(`(?i)^([\w.]+)\s+IN\s*\(([^)]*)\)$`)

// matchSecIdxCandidate recognizes a single WHERE conjunct as a "col IN
// (v1,v2,...)" predicate, without yet knowing whether col is a director
// column - that check happens once tables are resolved.
func matchSecIdxCandidate(conjunct string) (column string, values []string, ok bool) {
	m := secIdxRE.FindStringSubmatch(strings.TrimSpace(conjunct))
	if m == nil {
		return "", nil, false
	}
	col := m[1]
	if dot := strings.LastIndex(col, "."); dot >= 0 {
		col = col[dot+1:]
	}
	for _, v := range strings.Split(m[2], ",") {
		values = append(values, strings.TrimSpace(v))
	}
	return col, values, true
}
